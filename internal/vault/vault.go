// Package vault seals small secrets such as stored payment method details.
//
// Each value is encrypted with AES-256-GCM under a fresh random nonce, so
// sealing the same plaintext twice gives different output.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrEmptyPassphrase   = errors.New("vault passphrase must not be empty")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

var encoding = base64.RawURLEncoding

// Sealer encrypts and decrypts values with a key derived from a passphrase.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 256-bit key as SHA-256(passphrase).
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal returns base64url(nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Any tampering, truncation or key mismatch returns
// ErrInvalidCiphertext.
func (s *Sealer) Open(sealed string) (string, error) {
	data, err := encoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
