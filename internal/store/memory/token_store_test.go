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

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	t.Run("create get delete", func(t *testing.T) {
		st := NewTokenStore()
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "h1", UserID: userID, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}))

		got, err := st.Get(ctx, "h1")
		require.NoError(t, err)
		require.Equal(t, userID, got.UserID)

		require.NoError(t, st.Delete(ctx, "h1"))
		_, err = st.Get(ctx, "h1")
		require.ErrorIs(t, err, store.ErrTokenNotFound)
		require.ErrorIs(t, st.Delete(ctx, "h1"), store.ErrTokenNotFound)
	})

	t.Run("delete by user", func(t *testing.T) {
		st := NewTokenStore()
		other := uuid.New()
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "h1", UserID: userID, ExpiresAt: now.Add(time.Hour)}))
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "h2", UserID: userID, ExpiresAt: now.Add(time.Hour)}))
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "h3", UserID: other, ExpiresAt: now.Add(time.Hour)}))

		count, err := st.DeleteByUser(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 2, count)

		_, err = st.Get(ctx, "h3")
		require.NoError(t, err)
	})

	t.Run("delete expired", func(t *testing.T) {
		st := NewTokenStore()
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "old", UserID: userID, ExpiresAt: now}))
		require.NoError(t, st.Create(ctx, &models.AuthToken{Hash: "new", UserID: userID, ExpiresAt: now.Add(time.Nanosecond)}))

		count, err := st.DeleteExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		_, err = st.Get(ctx, "new")
		require.NoError(t, err)
	})
}
