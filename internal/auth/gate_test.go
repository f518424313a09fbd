package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/moontravel/internal/cookie"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
	"github.com/wolfeidau/moontravel/internal/store/memory"
)

type gateFixture struct {
	gate       *Gate
	sessions   *Sessions
	identities *memory.IdentityStore
	clock      *fakeClock
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	clock := newClock()
	identities := memory.NewIdentityStore()
	sessions := newTestSessions(t, memory.NewSessionStore(), clock)

	return &gateFixture{
		gate:       NewGate(sessions, identities),
		sessions:   sessions,
		identities: identities,
		clock:      clock,
	}
}

func (f *gateFixture) login(t *testing.T, identity *models.Identity) string {
	t.Helper()
	id, err := f.sessions.Create(context.Background(), identity.ID, ClientInfo{})
	require.NoError(t, err)
	return id
}

func TestGate_Authorize(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	alice := createIdentity(t, f.identities, "alice", models.RoleTraveler)
	admin := createIdentity(t, f.identities, "root", models.RoleAdmin)
	aliceSession := f.login(t, alice)
	adminSession := f.login(t, admin)

	orphanSession, err := f.sessions.Create(ctx, uuid.Must(uuid.NewV7()), ClientInfo{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		sessionID string
		required  models.Role
		outcome   Outcome
		reason    string
	}{
		{"no session", "", models.RoleTraveler, OutcomeUnauthenticated, ReasonNoSession},
		{"unknown session", "forged", models.RoleTraveler, OutcomeUnauthenticated, ReasonNoSession},
		{"session bound to missing identity", orphanSession, models.RoleTraveler, OutcomeForbidden, ReasonAccessDenied},
		{"role mismatch", aliceSession, models.RoleHotelManager, OutcomeForbidden, ReasonInsufficient},
		{"admin is not a hotel manager", adminSession, models.RoleHotelManager, OutcomeForbidden, ReasonInsufficient},
		{"authorized", aliceSession, models.RoleTraveler, OutcomeAuthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := f.gate.Authorize(ctx, tt.sessionID, tt.required)
			require.NoError(t, err)
			require.Equal(t, tt.outcome, decision.Outcome)
			require.Equal(t, tt.reason, decision.Reason)

			if tt.outcome == OutcomeAuthorized {
				require.True(t, decision.Allowed())
				require.NoError(t, decision.Err())
				require.Equal(t, alice.ID, decision.UserID)
				require.Equal(t, models.RoleTraveler, decision.Role)
			} else {
				require.False(t, decision.Allowed())
				require.Error(t, decision.Err())
			}
		})
	}
}

func TestGate_DeactivatedAccountDenied(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	admin := createIdentity(t, f.identities, "root", models.RoleAdmin)
	sessionID := f.login(t, admin)

	decision, err := f.gate.Authorize(ctx, sessionID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, decision.Allowed())

	require.NoError(t, f.identities.SetStatus(ctx, admin.ID, models.StatusDeactivated, time.Now()))

	decision, err = f.gate.Authorize(ctx, sessionID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, OutcomeForbidden, decision.Outcome)
	require.Equal(t, ReasonInactive, decision.Reason)

	require.NoError(t, f.identities.SetStatus(ctx, admin.ID, models.StatusActive, time.Now()))

	decision, err = f.gate.Authorize(ctx, sessionID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, decision.Allowed())
}

func TestGate_ExpiredSessionUnauthenticated(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	alice := createIdentity(t, f.identities, "alice", models.RoleTraveler)
	sessionID := f.login(t, alice)

	f.clock.Advance(DefaultSessionTTL)

	decision, err := f.gate.Authorize(ctx, sessionID, models.RoleTraveler)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnauthenticated, decision.Outcome)
}

func TestGate_DestroyedSessionUnauthenticated(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	alice := createIdentity(t, f.identities, "alice", models.RoleTraveler)
	sessionID := f.login(t, alice)

	require.NoError(t, f.sessions.Destroy(ctx, sessionID))

	decision, err := f.gate.Authorize(ctx, sessionID, models.RoleTraveler)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnauthenticated, decision.Outcome)
	require.Equal(t, ReasonNoSession, decision.Reason)
}

func TestGate_StoreFaultPropagates(t *testing.T) {
	fault := errors.New("connection refused")
	sessions := newTestSessions(t, &failingSessionStore{err: fault}, newClock())
	gate := NewGate(sessions, memory.NewIdentityStore())

	_, err := gate.Authorize(context.Background(), "some-session", models.RoleTraveler)
	require.ErrorIs(t, err, fault)
}

func TestRequireRole(t *testing.T) {
	f := newGateFixture(t)

	manager := createIdentity(t, f.identities, "manager", models.RoleHotelManager)
	traveler := createIdentity(t, f.identities, "traveler", models.RoleTraveler)

	var observed []Decision
	observer := func(ctx context.Context, required models.Role, d Decision) {
		observed = append(observed, d)
	}

	var principal *Principal
	handler := RequireRole(f.gate, models.RoleHotelManager, observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(sessionID string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
		if sessionID != "" {
			r.AddCookie(&http.Cookie{Name: cookie.SessionName, Value: sessionID})
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	errorBody := func(t *testing.T, w *httptest.ResponseRecorder) string {
		t.Helper()
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body["error"]
	}

	t.Run("no cookie", func(t *testing.T) {
		w := call("")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, ReasonNoSession, errorBody(t, w))
	})

	t.Run("wrong role", func(t *testing.T) {
		w := call(f.login(t, traveler))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, ReasonInsufficient, errorBody(t, w))
	})

	t.Run("remember marker alone is not a session", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
		r.AddCookie(&http.Cookie{Name: cookie.RememberName, Value: cookie.RememberValue})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authorized", func(t *testing.T) {
		w := call(f.login(t, manager))
		require.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, principal)
		require.Equal(t, manager.ID, principal.UserID)
		require.Equal(t, models.RoleHotelManager, principal.Role)
	})

	require.Len(t, observed, 4)
}

func TestRequireRole_storeFault(t *testing.T) {
	sessions := newTestSessions(t, &failingSessionStore{err: errors.New("timeout")}, newClock())
	gate := NewGate(sessions, memory.NewIdentityStore())

	handler := RequireRole(gate, models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	r.AddCookie(&http.Cookie{Name: cookie.SessionName, Value: "sid"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Database error"}`, w.Body.String())
}

func TestPrincipalFromContext_missing(t *testing.T) {
	require.Nil(t, PrincipalFromContext(context.Background()))
}

var _ store.SessionStore = (*failingSessionStore)(nil)
