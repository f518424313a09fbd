package store

import "errors"

// Stores groups the stores used by the auth core.
type Stores struct {
	Identities IdentityStore
	Sessions   SessionStore
	Tokens     TokenStore
	Audit      AuditStore
	Hotels     HotelStore
}

// Validate checks that every store is set.
func (s Stores) Validate() error {
	if s.Identities == nil || s.Sessions == nil || s.Tokens == nil || s.Audit == nil || s.Hotels == nil {
		return errors.New("all stores (identities, sessions, tokens, audit, hotels) are required")
	}
	return nil
}
