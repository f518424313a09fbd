package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSealer(t *testing.T) {
	_, err := NewSealer("")
	require.ErrorIs(t, err, ErrEmptyPassphrase)

	s, err := NewSealer("payment-key")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSealOpen(t *testing.T) {
	s, err := NewSealer("payment-key")
	require.NoError(t, err)

	for _, plaintext := range []string{"4111111111111111", "", "ünïcode card holder"} {
		sealed, err := s.Seal(plaintext)
		require.NoError(t, err)
		require.NotContains(t, sealed, "=")

		opened, err := s.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, plaintext, opened)
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	s, err := NewSealer("payment-key")
	require.NoError(t, err)

	a, err := s.Seal("4111111111111111")
	require.NoError(t, err)
	b, err := s.Seal("4111111111111111")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOpen_Rejects(t *testing.T) {
	s, err := NewSealer("payment-key")
	require.NoError(t, err)

	sealed, err := s.Seal("4111111111111111")
	require.NoError(t, err)

	other, err := NewSealer("other-key")
	require.NoError(t, err)

	// flip a character in the ciphertext body
	tampered := []byte(sealed)
	i := len(tampered) - 5
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	tests := []struct {
		name   string
		sealer *Sealer
		input  string
	}{
		{"wrong key", other, sealed},
		{"tampered", s, string(tampered)},
		{"truncated", s, sealed[:10]},
		{"not base64", s, "!!!" + strings.Repeat("x", 40)},
		{"empty", s, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sealer.Open(tt.input)
			require.ErrorIs(t, err, ErrInvalidCiphertext)
		})
	}
}
