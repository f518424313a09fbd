package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is provisioned for a hotel manager at signup.
type Hotel struct {
	HotelID        uuid.UUID // UUIDv7
	Name           string
	Location       string
	Price          int
	Description    string
	RoomsAvailable int
	ManagerID      uuid.UUID // FK to identities
	CreatedAt      time.Time
}
