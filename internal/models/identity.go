package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the single role an identity holds. Roles are matched exactly, there is
// no hierarchy between them.
type Role string

const (
	RoleTraveler     Role = "traveler"
	RoleHotelManager Role = "hotel_manager"
	RoleAdmin        Role = "admin"
)

// Roles lists every assignable role.
var Roles = []Role{RoleTraveler, RoleHotelManager, RoleAdmin}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTraveler, RoleHotelManager, RoleAdmin:
		return true
	}
	return false
}

// Status is the account state of an identity.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// Identity is a registered account.
type Identity struct {
	ID           uuid.UUID // UUIDv7, immutable
	Username     string    // unique
	Email        string    // unique
	PasswordHash string    // bcrypt digest, never the plaintext
	Role         Role
	Status       Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the account may pass the authorization gate.
func (i *Identity) IsActive() bool {
	return i.Status == StatusActive
}
