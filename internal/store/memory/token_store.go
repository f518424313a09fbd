package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// TokenStore implements store.TokenStore using in-memory storage.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*models.AuthToken // hash -> AuthToken
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]*models.AuthToken),
	}
}

func (s *TokenStore) Create(ctx context.Context, token *models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *token
	s.tokens[token.Hash] = &clone

	return nil
}

func (s *TokenStore) Get(ctx context.Context, hash string) (*models.AuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[hash]
	if !exists {
		return nil, store.ErrTokenNotFound
	}

	clone := *token
	return &clone, nil
}

func (s *TokenStore) Delete(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[hash]; !exists {
		return store.ErrTokenNotFound
	}
	delete(s.tokens, hash)

	return nil
}

func (s *TokenStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for hash, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, hash)
			count++
		}
	}

	return count, nil
}

func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for hash, token := range s.tokens {
		if token.IsExpired(now) {
			delete(s.tokens, hash)
			count++
		}
	}

	return count, nil
}
