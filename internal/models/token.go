package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a bearer credential issued at login.
type AuthToken struct {
	Hash      string // SHA-256 of the token, hex encoded
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true once now has reached the expiry instant. A token is
// valid strictly while now < ExpiresAt.
func (t *AuthToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
