package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque identifier to an identity.
// Only a keyed digest of the identifier is stored, the identifier itself lives in the client cookie.
type Session struct {
	Key       string    // HMAC digest of the session id
	UserID    uuid.UUID // bound identity
	CreatedAt time.Time
	ExpiresAt time.Time

	// Optional audit metadata
	UserAgent string
	IPAddress string
}

// IsExpired returns true once now has reached the expiry instant.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
