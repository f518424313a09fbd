package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
	"github.com/wolfeidau/moontravel/internal/store/memory"
)

type failingAuditStore struct {
	store.AuditStore
}

func (failingAuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	return errors.New("disk full")
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(memory.NewAuditStore())

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recorder.Now = func() time.Time { return fixed }

	userID := uuid.Must(uuid.NewV7())

	require.NoError(t, recorder.Record(ctx, &userID, models.EventLoginSuccess, "10.0.0.1"))
	require.NoError(t, recorder.Record(ctx, nil, models.EventLoginFailure, "10.0.0.2"))

	entries, err := recorder.Entries(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, userID, *entries[0].UserID)
	require.Equal(t, models.EventLoginSuccess, entries[0].EventType)
	require.Equal(t, "10.0.0.1", entries[0].IPAddress)
	require.Equal(t, fixed, entries[0].Timestamp)
	require.NotEqual(t, uuid.Nil, entries[0].ID)

	require.Nil(t, entries[1].UserID)
	require.Equal(t, models.EventLoginFailure, entries[1].EventType)

	failures, err := recorder.Entries(ctx, store.AuditFilter{EventType: models.EventLoginFailure})
	require.NoError(t, err)
	require.Len(t, failures, 1)
}

func TestRecorder_storeFailure(t *testing.T) {
	recorder := NewRecorder(failingAuditStore{})

	var notified models.EventType
	recorder.OnError = func(ctx context.Context, eventType models.EventType) {
		notified = eventType
	}

	err := recorder.Record(context.Background(), nil, models.EventLogout, "")
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, models.EventLogout, notified)
}
