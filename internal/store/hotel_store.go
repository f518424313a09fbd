package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// Sentinel errors for hotel store operations
var (
	ErrHotelNotFound = errors.New("hotel not found")
)

// HotelStore holds the hotel rows provisioned for hotel managers.
type HotelStore interface {
	// Create inserts a hotel.
	// Fails if the manager identity doesn't exist.
	Create(ctx context.Context, hotel *models.Hotel) error

	// ListByManager returns the hotels owned by a manager.
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]*models.Hotel, error)
}
