package memory

import (
	"context"
	"sync"

	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// AuditStore implements store.AuditStore as an append-only slice.
type AuditStore struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append records an entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	if entry.UserID != nil {
		userID := *entry.UserID
		clone.UserID = &userID
	}
	s.entries = append(s.entries, clone)

	return nil
}

// List returns entries matching the filter in append order.
func (s *AuditStore) List(ctx context.Context, filter store.AuditFilter) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.AuditEntry
	for i := range s.entries {
		if !filter.Matches(&s.entries[i]) {
			continue
		}

		clone := s.entries[i]
		if clone.UserID != nil {
			userID := *clone.UserID
			clone.UserID = &userID
		}
		result = append(result, &clone)

		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}

	return result, nil
}
