package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

const identityColumns = `id, username, email, password_hash, role, status, created_at, updated_at`

// IdentityStore implements store.IdentityStore using PostgreSQL.
type IdentityStore struct {
	pool *pgxpool.Pool
}

// NewIdentityStore creates a new PostgreSQL-backed identity store.
func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

// Create inserts a new identity.
func (s *IdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		identity.ID,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		string(identity.Role),
		string(identity.Status),
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapPostgresError(err)
		}
		return fmt.Errorf("failed to create identity: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", identity.ID.String()).
		Str("role", string(identity.Role)).
		Msg("Created identity")

	return nil
}

// Get retrieves an identity by ID.
func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return identity, nil
}

// GetByEmail retrieves an identity by exact email match.
func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email)

	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}

	return identity, nil
}

// List returns all identities ordered by creation time.
func (s *IdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var identities []*models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identities: %w", err)
	}

	return identities, nil
}

// Update replaces username, email and role of an existing identity.
func (s *IdentityStore) Update(ctx context.Context, identity *models.Identity) error {
	query := `
		UPDATE identities
		SET username = $2, email = $3, role = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		identity.ID,
		identity.Username,
		identity.Email,
		string(identity.Role),
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapPostgresError(err)
		}
		return fmt.Errorf("failed to update identity: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrIdentityNotFound
	}

	return nil
}

// SetStatus changes the account status.
func (s *IdentityStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, updatedAt time.Time) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE identities SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set identity status: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrIdentityNotFound
	}

	log.Debug().
		Str("user_id", id.String()).
		Str("status", string(status)).
		Msg("Changed identity status")

	return nil
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var (
		identity models.Identity
		role     string
		status   string
	)

	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&role,
		&status,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	identity.Role = models.Role(role)
	identity.Status = models.Status(status)

	return &identity, nil
}
