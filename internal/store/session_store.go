package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// Sentinel errors for session store operations
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionStore persists server-side sessions keyed by the digest of the session id.
// Expiry is evaluated by the caller, the store returns expired rows until they are deleted.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// Get retrieves a session by key.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Get(ctx context.Context, key string) (*models.Session, error)

	// Delete removes a session by key.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Delete(ctx context.Context, key string) error

	// DeleteByUser removes every session bound to an identity.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
