//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (store.Stores, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &PoolConfig{
		ConnString: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
	}

	pool, stores, err := Open(ctx, cfg, true)
	require.NoError(t, err)

	// a second run is a no-op
	require.NoError(t, RunMigrations(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return stores, cleanup
}

func newIdentity(username, email string, role models.Role) *models.Identity {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$digest",
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	alice := newIdentity("alice", "alice@example.com", models.RoleTraveler)
	bob := newIdentity("bob", "bob@example.com", models.RoleHotelManager)

	t.Run("identities", func(t *testing.T) {
		require.NoError(t, stores.Identities.Create(ctx, alice))
		require.NoError(t, stores.Identities.Create(ctx, bob))

		err := stores.Identities.Create(ctx, newIdentity("alice2", "alice@example.com", models.RoleTraveler))
		require.ErrorIs(t, err, store.ErrIdentityAlreadyExists)

		err = stores.Identities.Create(ctx, newIdentity("alice", "other@example.com", models.RoleTraveler))
		require.ErrorIs(t, err, store.ErrIdentityAlreadyExists)

		got, err := stores.Identities.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
		require.Equal(t, models.RoleTraveler, got.Role)

		_, err = stores.Identities.GetByEmail(ctx, "ALICE@example.com")
		require.ErrorIs(t, err, store.ErrIdentityNotFound)

		list, err := stores.Identities.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, alice.ID, list[0].ID)

		updated := *alice
		updated.Email = "bob@example.com"
		require.ErrorIs(t, stores.Identities.Update(ctx, &updated), store.ErrIdentityAlreadyExists)

		updated.Email = "alice@new.example.com"
		updated.Role = models.RoleAdmin
		require.NoError(t, stores.Identities.Update(ctx, &updated))

		got, err = stores.Identities.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "alice@new.example.com", got.Email)
		require.Equal(t, models.RoleAdmin, got.Role)

		deactivatedAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, stores.Identities.SetStatus(ctx, alice.ID, models.StatusDeactivated, deactivatedAt))
		got, err = stores.Identities.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive())
		require.True(t, deactivatedAt.Equal(got.UpdatedAt))

		require.ErrorIs(t, stores.Identities.SetStatus(ctx, uuid.New(), models.StatusActive, time.Now()), store.ErrIdentityNotFound)
	})

	t.Run("sessions", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		live := &models.Session{Key: "live", UserID: bob.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour), IPAddress: "10.0.0.1"}
		stale := &models.Session{Key: "stale", UserID: bob.ID, CreatedAt: now, ExpiresAt: now.Add(-time.Second)}

		require.NoError(t, stores.Sessions.Create(ctx, live))
		require.NoError(t, stores.Sessions.Create(ctx, stale))

		got, err := stores.Sessions.Get(ctx, "live")
		require.NoError(t, err)
		require.Equal(t, bob.ID, got.UserID)
		require.Equal(t, "10.0.0.1", got.IPAddress)

		n, err := stores.Sessions.DeleteExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = stores.Sessions.Get(ctx, "stale")
		require.ErrorIs(t, err, store.ErrSessionNotFound)

		require.NoError(t, stores.Sessions.Delete(ctx, "live"))
		require.ErrorIs(t, stores.Sessions.Delete(ctx, "live"), store.ErrSessionNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, stores.Tokens.Create(ctx, &models.AuthToken{Hash: "h1", UserID: bob.ID, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}))
		require.NoError(t, stores.Tokens.Create(ctx, &models.AuthToken{Hash: "h2", UserID: bob.ID, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}))

		got, err := stores.Tokens.Get(ctx, "h1")
		require.NoError(t, err)
		require.Equal(t, bob.ID, got.UserID)

		n, err := stores.Tokens.DeleteByUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Equal(t, 2, n)

		_, err = stores.Tokens.Get(ctx, "h1")
		require.ErrorIs(t, err, store.ErrTokenNotFound)
	})

	t.Run("audit", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, stores.Audit.Append(ctx, &models.AuditEntry{
			ID: uuid.Must(uuid.NewV7()), UserID: &bob.ID, EventType: models.EventLoginSuccess, IPAddress: "10.0.0.1", Timestamp: now,
		}))
		require.NoError(t, stores.Audit.Append(ctx, &models.AuditEntry{
			ID: uuid.Must(uuid.NewV7()), EventType: models.EventLoginFailure, Timestamp: now.Add(time.Millisecond),
		}))

		all, err := stores.Audit.List(ctx, store.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Nil(t, all[1].UserID)

		mine, err := stores.Audit.List(ctx, store.AuditFilter{UserID: &bob.ID, EventType: models.EventLoginSuccess, Limit: 10})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		require.Equal(t, "10.0.0.1", mine[0].IPAddress)
	})

	t.Run("hotels", func(t *testing.T) {
		hotel := &models.Hotel{
			HotelID:        uuid.Must(uuid.NewV7()),
			Name:           "Nile View",
			Location:       "Cairo",
			Price:          100,
			Description:    "Default description",
			RoomsAvailable: 10,
			ManagerID:      bob.ID,
			CreatedAt:      time.Now().UTC(),
		}
		require.NoError(t, stores.Hotels.Create(ctx, hotel))

		hotels, err := stores.Hotels.ListByManager(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, hotels, 1)
		require.Equal(t, "Nile View", hotels[0].Name)

		orphan := *hotel
		orphan.HotelID = uuid.Must(uuid.NewV7())
		orphan.ManagerID = uuid.New()
		require.ErrorIs(t, stores.Hotels.Create(ctx, &orphan), store.ErrIdentityNotFound)
	})
}
