package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// AuditStore is an append-only ledger. There is no update or delete.
type AuditStore interface {
	// Append records a new entry.
	Append(ctx context.Context, entry *models.AuditEntry) error

	// List returns entries matching the filter, oldest first.
	List(ctx context.Context, filter AuditFilter) ([]*models.AuditEntry, error)
}

// AuditFilter specifies filters for listing audit entries
type AuditFilter struct {
	UserID    *uuid.UUID       // Filter by identity (nil = all)
	EventType models.EventType // Filter by event type (empty = all)
	Limit     int              // Max results (0 = no limit)
}

// Matches reports whether an entry passes the filter.
func (f AuditFilter) Matches(entry *models.AuditEntry) bool {
	if f.UserID != nil && (entry.UserID == nil || *entry.UserID != *f.UserID) {
		return false
	}
	if f.EventType != "" && entry.EventType != f.EventType {
		return false
	}
	return true
}
