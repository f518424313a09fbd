package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	session := &models.Session{
		Key:       "key-1",
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.Create(ctx, session))

	got, err := st.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)

	require.NoError(t, st.Delete(ctx, "key-1"))

	_, err = st.Get(ctx, "key-1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	err = st.Delete(ctx, "key-1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	alice, bob := uuid.New(), uuid.New()
	for i, userID := range []uuid.UUID{alice, alice, bob} {
		require.NoError(t, st.Create(ctx, &models.Session{
			Key:       string(rune('a' + i)),
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}))
	}

	count, err := st.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = st.Get(ctx, "c")
	require.NoError(t, err)

	count, err = st.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	require.NoError(t, st.Create(ctx, &models.Session{Key: "live", UserID: userID, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, st.Create(ctx, &models.Session{Key: "dead", UserID: userID, CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, st.Create(ctx, &models.Session{Key: "edge", UserID: userID, CreatedAt: now, ExpiresAt: now}))

	count, err := st.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = st.Get(ctx, "live")
	require.NoError(t, err)

	// the user index must still resolve the survivor
	count, err = st.DeleteByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
