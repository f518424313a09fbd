package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

func TestHotelStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("manager must exist", func(t *testing.T) {
		st := NewHotelStore(NewIdentityStore())

		err := st.Create(ctx, &models.Hotel{HotelID: uuid.New(), Name: "Emerald Sands", ManagerID: uuid.New()})
		require.ErrorIs(t, err, store.ErrIdentityNotFound)
	})

	t.Run("create and list by manager", func(t *testing.T) {
		identities := NewIdentityStore()
		manager := newTestIdentity(t, "mgr", "m@x.com")
		manager.Role = models.RoleHotelManager
		require.NoError(t, identities.Create(ctx, manager))

		st := NewHotelStore(identities)
		require.NoError(t, st.Create(ctx, &models.Hotel{HotelID: uuid.New(), Name: "Emerald Sands", ManagerID: manager.ID}))

		hotels, err := st.ListByManager(ctx, manager.ID)
		require.NoError(t, err)
		require.Len(t, hotels, 1)
		require.Equal(t, "Emerald Sands", hotels[0].Name)
	})

	t.Run("without identity store skips the check", func(t *testing.T) {
		st := NewHotelStore(nil)
		require.NoError(t, st.Create(ctx, &models.Hotel{HotelID: uuid.New(), Name: "Nile View", ManagerID: uuid.New()}))
	})
}
