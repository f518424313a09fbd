package memory

import "github.com/wolfeidau/moontravel/internal/store"

// NewStores wires a full set of in-memory stores.
func NewStores() store.Stores {
	identities := NewIdentityStore()
	return store.Stores{
		Identities: identities,
		Sessions:   NewSessionStore(),
		Tokens:     NewTokenStore(),
		Audit:      NewAuditStore(),
		Hotels:     NewHotelStore(identities),
	}
}
