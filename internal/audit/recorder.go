// Package audit records authentication events in an append-only ledger.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// Recorder appends audit entries.
type Recorder struct {
	store store.AuditStore

	// OnError is called when an entry cannot be stored. Optional.
	OnError func(ctx context.Context, eventType models.EventType)

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewRecorder creates a recorder writing to auditStore.
func NewRecorder(auditStore store.AuditStore) *Recorder {
	return &Recorder{store: auditStore, Now: time.Now}
}

// Record appends one event. userID is nil when no identity is known.
// A failed write is logged and returned; callers on the login path ignore it.
func (r *Recorder) Record(ctx context.Context, userID *uuid.UUID, eventType models.EventType, ipAddress string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate audit id: %w", err)
	}

	entry := &models.AuditEntry{
		ID:        id,
		UserID:    userID,
		EventType: eventType,
		IPAddress: ipAddress,
		Timestamp: r.Now().UTC(),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to record audit entry")
		if r.OnError != nil {
			r.OnError(ctx, eventType)
		}
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// Entries returns recorded events matching filter, oldest first.
func (r *Recorder) Entries(ctx context.Context, filter store.AuditFilter) ([]*models.AuditEntry, error) {
	return r.store.List(ctx, filter)
}
