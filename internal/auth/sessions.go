package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

// MinSecretLength is the minimum session secret size in bytes.
const MinSecretLength = 32

// DefaultSessionTTL bounds how long an unused server-side session is kept.
const DefaultSessionTTL = 24 * time.Hour

// ClientInfo is optional metadata recorded with a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Sessions is the session manager. The identifier handed to the client is
// never stored, only its HMAC under the process secret.
type Sessions struct {
	store  store.SessionStore
	secret []byte
	ttl    time.Duration

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewSessions creates a session manager. The secret is copied and held for the
// life of the process.
func NewSessions(sessionStore store.SessionStore, secret []byte, ttl time.Duration) (*Sessions, error) {
	if sessionStore == nil {
		return nil, errors.New("session store is required")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("session TTL must be greater than 0")
	}

	return &Sessions{
		store:  sessionStore,
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		Now:    time.Now,
	}, nil
}

// Create starts a session bound to userID and returns the identifier for the client.
func (s *Sessions) Create(ctx context.Context, userID uuid.UUID, client ClientInfo) (string, error) {
	id, err := newSecret()
	if err != nil {
		return "", err
	}

	now := s.Now().UTC()
	session := &models.Session{
		Key:       s.key(id),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return id, nil
}

// Resolve returns the identity bound to a session id.
// Returns store.ErrSessionNotFound for an empty or unknown id and
// store.ErrSessionExpired once the session has lapsed. Other errors are store faults.
func (s *Sessions) Resolve(ctx context.Context, id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, store.ErrSessionNotFound
	}

	session, err := s.store.Get(ctx, s.key(id))
	if err != nil {
		return uuid.Nil, err
	}

	if session.IsExpired(s.Now()) {
		return uuid.Nil, store.ErrSessionExpired
	}

	return session.UserID, nil
}

// Destroy ends a session. Unknown and empty ids are not an error.
func (s *Sessions) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	err := s.store.Delete(ctx, s.key(id))
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}

// DestroyAll ends every session bound to userID.
func (s *Sessions) DestroyAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to destroy sessions: %w", err)
	}

	log.Debug().Str("user_id", userID.String()).Int("count", n).Msg("Destroyed sessions")
	return n, nil
}

func (s *Sessions) key(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
