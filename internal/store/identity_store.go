package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// Sentinel errors for identity store operations
var (
	ErrIdentityNotFound      = errors.New("identity not found")
	ErrIdentityAlreadyExists = errors.New("identity already exists")
)

// IdentityStore defines the interface for the credential store.
// Username and email are unique across all identities.
type IdentityStore interface {
	// Create inserts a new identity.
	// Returns ErrIdentityAlreadyExists if the id, username or email is taken.
	Create(ctx context.Context, identity *models.Identity) error

	// Get retrieves an identity by ID.
	// Returns ErrIdentityNotFound if the identity doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Identity, error)

	// GetByEmail retrieves an identity by exact email match.
	// Returns ErrIdentityNotFound if no identity has the email.
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)

	// List returns all identities ordered by creation time.
	List(ctx context.Context) ([]*models.Identity, error)

	// Update replaces username, email and role of an existing identity.
	// Returns ErrIdentityNotFound or ErrIdentityAlreadyExists.
	Update(ctx context.Context, identity *models.Identity) error

	// SetStatus changes the account status and stamps updatedAt.
	// Returns ErrIdentityNotFound if the identity doesn't exist.
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status, updatedAt time.Time) error
}
