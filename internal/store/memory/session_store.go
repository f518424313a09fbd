package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// SessionStore implements store.SessionStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type SessionStore struct {
	mu sync.RWMutex

	sessions       map[string]*models.Session // key -> Session
	sessionsByUser map[uuid.UUID][]string     // user_id -> []key
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:       make(map[string]*models.Session),
		sessionsByUser: make(map[uuid.UUID][]string),
	}
}

// Create creates a new session in memory.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clone to avoid external modifications
	clone := *session
	s.sessions[session.Key] = &clone

	s.sessionsByUser[session.UserID] = append(s.sessionsByUser[session.UserID], session.Key)

	return nil
}

// Get retrieves a session by key.
func (s *SessionStore) Get(ctx context.Context, key string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[key]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	clone := *session
	return &clone, nil
}

// Delete deletes a session by key (logout).
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[key]
	if !exists {
		return store.ErrSessionNotFound
	}

	s.removeFromUserIndex(session.UserID, key)
	delete(s.sessions, key)

	return nil
}

// DeleteByUser deletes all sessions for an identity.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, exists := s.sessionsByUser[userID]
	if !exists {
		return 0, nil
	}

	for _, key := range keys {
		delete(s.sessions, key)
	}
	delete(s.sessionsByUser, userID)

	return len(keys), nil
}

// DeleteExpired deletes all sessions expired at now (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toDelete []string
	for key, session := range s.sessions {
		if session.IsExpired(now) {
			toDelete = append(toDelete, key)
		}
	}

	for _, key := range toDelete {
		s.removeFromUserIndex(s.sessions[key].UserID, key)
		delete(s.sessions, key)
	}

	return len(toDelete), nil
}

func (s *SessionStore) removeFromUserIndex(userID uuid.UUID, key string) {
	keys := s.sessionsByUser[userID]
	for i, k := range keys {
		if k == key {
			s.sessionsByUser[userID] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	if len(s.sessionsByUser[userID]) == 0 {
		delete(s.sessionsByUser, userID)
	}
}
