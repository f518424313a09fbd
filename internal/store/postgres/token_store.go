package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// TokenStore implements store.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *pgxpool.Pool
}

// NewTokenStore creates a new PostgreSQL-backed token store.
func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Create stores a newly issued token.
func (s *TokenStore) Create(ctx context.Context, token *models.AuthToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auth_tokens (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token.Hash, token.UserID, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a token by hash.
func (s *TokenStore) Get(ctx context.Context, hash string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := s.pool.QueryRow(ctx, `
		SELECT token_hash, user_id, created_at, expires_at
		FROM auth_tokens
		WHERE token_hash = $1
	`, hash).Scan(&token.Hash, &token.UserID, &token.CreatedAt, &token.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// Delete revokes a single token.
func (s *TokenStore) Delete(ctx context.Context, hash string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE token_hash = $1`, hash)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTokenNotFound
	}

	return nil
}

// DeleteByUser revokes every token issued to an identity.
func (s *TokenStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens for user: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// DeleteExpired removes tokens whose expiry is at or before now.
func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return int(result.RowsAffected()), nil
}
