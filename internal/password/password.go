// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt work factor used when none is configured.
	DefaultCost = 12

	// MaxBytes is the longest password bcrypt reads in full.
	MaxBytes = 72
)

var (
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher hashes and verifies passwords at a fixed cost.
type Hasher struct {
	cost int

	// dummy is compared against when the identity is unknown so that both
	// failure paths spend a bcrypt comparison at the same cost.
	dummy []byte
}

// NewHasher returns a Hasher using cost, or DefaultCost when cost is zero.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("moontravel-equalize"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash returns a salted bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest never
// matches, and neither does a plaintext longer than MaxBytes, since bcrypt
// would only compare its prefix.
func (h *Hasher) Verify(plaintext, digest string) bool {
	if len(plaintext) > MaxBytes {
		h.Equalize(plaintext)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Equalize burns one bcrypt comparison. Call it on paths that have no digest
// to verify against so they take as long as a real mismatch.
func (h *Hasher) Equalize(plaintext string) {
	if len(plaintext) > MaxBytes {
		plaintext = plaintext[:MaxBytes]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
