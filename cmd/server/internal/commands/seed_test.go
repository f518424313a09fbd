package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/server"
	"github.com/wolfeidau/moontravel/internal/store/memory"
	"golang.org/x/crypto/bcrypt"
)

const seedYAML = `
identities:
  - username: root
    email: root@moontravel.test
    password: Secret123!
    role: admin
  - username: omar
    email: omar@moontravel.test
    password: Secret123!
    role: hotel_manager
    hotelName: Nile View
`

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Identities, 2)
	require.Equal(t, "admin", seed.Identities[0].Role)
	require.Equal(t, "Nile View", seed.Identities[1].HotelName)

	_, err = parseSeed(strings.NewReader("identities: [unterminated"))
	require.Error(t, err)
}

func TestSeedIdentities(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	srv, err := server.New(server.Config{
		SessionSecret: []byte(strings.Repeat("s", auth.MinSecretLength)),
		SessionTTL:    auth.DefaultSessionTTL,
		BcryptCost:    bcrypt.MinCost,
	}, stores, nil)
	require.NoError(t, err)

	seed, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	created, skipped, err := seedIdentities(ctx, srv.Login(), seed.Identities)
	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Zero(t, skipped)

	// re-running skips the existing identities
	created, skipped, err = seedIdentities(ctx, srv.Login(), seed.Identities)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Equal(t, 2, skipped)

	identities, err := stores.Identities.List(ctx)
	require.NoError(t, err)
	require.Len(t, identities, 2)

	_, _, err = seedIdentities(ctx, srv.Login(), []SeedIdentity{{Username: "x", Email: "x@x", Password: "pw", Role: "pilot"}})
	require.Error(t, err)
}

func TestSessionFlags_Validate(t *testing.T) {
	require.Error(t, (&SessionFlags{TTL: auth.DefaultSessionTTL}).Validate())
	require.Error(t, (&SessionFlags{Secret: "short", TTL: auth.DefaultSessionTTL}).Validate())
	require.Error(t, (&SessionFlags{Secret: strings.Repeat("s", 32)}).Validate())
	require.NoError(t, (&SessionFlags{Secret: strings.Repeat("s", 32), TTL: auth.DefaultSessionTTL}).Validate())
}
