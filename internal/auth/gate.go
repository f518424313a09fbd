package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// Denial reasons, in the order the gate checks them.
const (
	ReasonNoSession    = "Unauthorized: No session"
	ReasonAccessDenied = "Access denied"
	ReasonInactive     = "Account inactive"
	ReasonInsufficient = "Insufficient privileges"
)

// Outcome is the result class of an authorization decision.
type Outcome int

const (
	OutcomeUnauthenticated Outcome = iota + 1
	OutcomeForbidden
	OutcomeAuthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Outcome Outcome
	Reason  string // empty when authorized

	// Set only when authorized.
	UserID uuid.UUID
	Role   models.Role
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAuthorized
}

// Err converts a denial into an API error, or nil when authorized.
func (d Decision) Err() error {
	switch d.Outcome {
	case OutcomeAuthorized:
		return nil
	case OutcomeUnauthenticated:
		return apierr.Unauthenticated(d.Reason)
	default:
		return apierr.Forbidden(d.Reason)
	}
}

// SessionResolver maps a session id to the bound identity.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (uuid.UUID, error)
}

// IdentityGetter loads an identity by id.
type IdentityGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

// Gate is the authorization check placed in front of every protected operation.
// It reads session and identity state and never writes.
type Gate struct {
	sessions   SessionResolver
	identities IdentityGetter
}

// NewGate creates a gate over the session manager and credential store.
func NewGate(sessions SessionResolver, identities IdentityGetter) *Gate {
	return &Gate{sessions: sessions, identities: identities}
}

// Authorize decides whether sessionID may perform an operation requiring role.
// Exactly one role matches; there is no hierarchy. A non-nil error means the
// store could not be reached and no decision was made.
func (g *Gate) Authorize(ctx context.Context, sessionID string, required models.Role) (Decision, error) {
	if sessionID == "" {
		return deny(OutcomeUnauthenticated, ReasonNoSession), nil
	}

	userID, err := g.sessions.Resolve(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return deny(OutcomeUnauthenticated, ReasonNoSession), nil
		}
		return Decision{}, err
	}

	identity, err := g.identities.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			return deny(OutcomeForbidden, ReasonAccessDenied), nil
		}
		return Decision{}, err
	}

	if !identity.IsActive() {
		return deny(OutcomeForbidden, ReasonInactive), nil
	}

	if identity.Role != required {
		return deny(OutcomeForbidden, ReasonInsufficient), nil
	}

	return Decision{
		Outcome: OutcomeAuthorized,
		UserID:  identity.ID,
		Role:    identity.Role,
	}, nil
}

func deny(outcome Outcome, reason string) Decision {
	return Decision{Outcome: outcome, Reason: reason}
}
