package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// HotelStore implements store.HotelStore using in-memory storage.
// When constructed with an identity store it enforces the manager foreign key.
type HotelStore struct {
	mu sync.RWMutex

	hotels     map[uuid.UUID]*models.Hotel // hotel_id -> Hotel
	identities store.IdentityStore
}

// NewHotelStore creates a new in-memory hotel store. identities may be nil.
func NewHotelStore(identities store.IdentityStore) *HotelStore {
	return &HotelStore{
		hotels:     make(map[uuid.UUID]*models.Hotel),
		identities: identities,
	}
}

// Create creates a new hotel in memory.
func (s *HotelStore) Create(ctx context.Context, hotel *models.Hotel) error {
	if s.identities != nil {
		if _, err := s.identities.Get(ctx, hotel.ManagerID); err != nil {
			return fmt.Errorf("failed to create hotel: manager %s: %w", hotel.ManagerID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hotels[hotel.HotelID]; exists {
		return fmt.Errorf("failed to create hotel: duplicate id %s", hotel.HotelID)
	}

	clone := *hotel
	s.hotels[hotel.HotelID] = &clone

	return nil
}

// ListByManager returns all hotels owned by a manager.
func (s *HotelStore) ListByManager(ctx context.Context, managerID uuid.UUID) ([]*models.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Hotel
	for _, h := range s.hotels {
		if h.ManagerID != managerID {
			continue
		}
		clone := *h
		result = append(result, &clone)
	}

	return result, nil
}
