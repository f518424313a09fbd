package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// TokenTTL is the fixed lifetime of a bearer token. Tokens are never renewed.
const TokenTTL = 2 * time.Hour

// Tokens issues and validates opaque bearer tokens. Only the SHA-256 of a
// token is persisted.
type Tokens struct {
	store store.TokenStore

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewTokens creates a token issuer backed by tokenStore.
func NewTokens(tokenStore store.TokenStore) (*Tokens, error) {
	if tokenStore == nil {
		return nil, errors.New("token store is required")
	}
	return &Tokens{store: tokenStore, Now: time.Now}, nil
}

// Issue mints a token for userID that expires TokenTTL from now.
func (t *Tokens) Issue(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	token, err := newSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	now := t.Now().UTC()
	record := &models.AuthToken{
		Hash:      hashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}

	if err := t.store.Create(ctx, record); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store token: %w", err)
	}

	return token, record.ExpiresAt, nil
}

// Validate returns the identity a token was issued to. It returns
// store.ErrTokenNotFound for unknown tokens and store.ErrTokenExpired from the
// expiry instant onwards.
func (t *Tokens) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, store.ErrTokenNotFound
	}

	record, err := t.store.Get(ctx, hashToken(token))
	if err != nil {
		return uuid.Nil, err
	}

	if record.IsExpired(t.Now()) {
		return uuid.Nil, store.ErrTokenExpired
	}

	return record.UserID, nil
}

// Revoke deletes a token. Unknown and empty tokens are not an error.
func (t *Tokens) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := t.store.Delete(ctx, hashToken(token))
	if err != nil && !errors.Is(err, store.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// RevokeAll deletes every token issued to userID.
func (t *Tokens) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := t.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return n, nil
}
