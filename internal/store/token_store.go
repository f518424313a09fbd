package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// Sentinel errors for token store operations
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
)

// TokenStore persists bearer tokens keyed by their SHA-256 hash.
type TokenStore interface {
	// Create stores a newly issued token.
	Create(ctx context.Context, token *models.AuthToken) error

	// Get retrieves a token by hash.
	// Returns ErrTokenNotFound if the token doesn't exist.
	Get(ctx context.Context, hash string) (*models.AuthToken, error)

	// Delete revokes a single token.
	// Returns ErrTokenNotFound if the token doesn't exist.
	Delete(ctx context.Context, hash string) error

	// DeleteByUser revokes every token issued to an identity.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
