package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// AuditStore implements store.AuditStore using PostgreSQL.
// The auth_logs table rejects UPDATE and DELETE with a trigger.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Append records a new entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auth_logs (id, user_id, event_type, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.UserID, string(entry.EventType), entry.IPAddress, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", mapPostgresError(err))
	}

	return nil
}

// List returns entries matching the filter, oldest first.
func (s *AuditStore) List(ctx context.Context, filter store.AuditFilter) ([]*models.AuditEntry, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, string(filter.EventType))
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)))
	}

	query := `SELECT id, user_id, event_type, ip_address, created_at FROM auth_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var (
			entry     models.AuditEntry
			userID    *uuid.UUID
			eventType string
		)
		if err := rows.Scan(&entry.ID, &userID, &eventType, &entry.IPAddress, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.UserID = userID
		entry.EventType = models.EventType(eventType)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
