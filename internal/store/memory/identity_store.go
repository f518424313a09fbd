package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// IdentityStore implements store.IdentityStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type IdentityStore struct {
	mu sync.RWMutex

	identities map[uuid.UUID]*models.Identity // id -> Identity
	byEmail    map[string]uuid.UUID           // email -> id
	byUsername map[string]uuid.UUID           // username -> id
}

// NewIdentityStore creates a new in-memory identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[uuid.UUID]*models.Identity),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Create creates a new identity in memory.
func (s *IdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.identities[identity.ID]; exists {
		return store.ErrIdentityAlreadyExists
	}
	if _, exists := s.byEmail[identity.Email]; exists {
		return store.ErrIdentityAlreadyExists
	}
	if _, exists := s.byUsername[identity.Username]; exists {
		return store.ErrIdentityAlreadyExists
	}

	clone := *identity
	s.identities[clone.ID] = &clone
	s.byEmail[clone.Email] = clone.ID
	s.byUsername[clone.Username] = clone.ID

	return nil
}

// Get retrieves an identity by ID.
func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, exists := s.identities[id]
	if !exists {
		return nil, store.ErrIdentityNotFound
	}

	clone := *identity
	return &clone, nil
}

// GetByEmail retrieves an identity by email.
func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, store.ErrIdentityNotFound
	}

	clone := *s.identities[id]
	return &clone, nil
}

// List returns all identities ordered by creation time.
func (s *IdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		clone := *identity
		result = append(result, &clone)
	}

	// creation order, id breaks ties
	slices.SortFunc(result, func(a, b *models.Identity) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return result, nil
}

// Update updates username, email and role of an existing identity.
func (s *IdentityStore) Update(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.identities[identity.ID]
	if !exists {
		return store.ErrIdentityNotFound
	}

	if id, taken := s.byEmail[identity.Email]; taken && id != identity.ID {
		return store.ErrIdentityAlreadyExists
	}
	if id, taken := s.byUsername[identity.Username]; taken && id != identity.ID {
		return store.ErrIdentityAlreadyExists
	}

	delete(s.byEmail, existing.Email)
	delete(s.byUsername, existing.Username)

	existing.Username = identity.Username
	existing.Email = identity.Email
	existing.Role = identity.Role
	existing.UpdatedAt = identity.UpdatedAt

	s.byEmail[existing.Email] = existing.ID
	s.byUsername[existing.Username] = existing.ID

	return nil
}

// SetStatus changes the account status of an identity.
func (s *IdentityStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, exists := s.identities[id]
	if !exists {
		return store.ErrIdentityNotFound
	}

	identity.Status = status
	identity.UpdatedAt = updatedAt

	return nil
}
