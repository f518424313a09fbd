package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/logger"
	"github.com/wolfeidau/moontravel/internal/login"
	"github.com/wolfeidau/moontravel/internal/server"
	"gopkg.in/yaml.v3"
)

// SeedFile is the fixture format read by the seed command.
type SeedFile struct {
	Identities []SeedIdentity `yaml:"identities"`
}

type SeedIdentity struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	HotelName string `yaml:"hotelName"`
}

type SeedCmd struct {
	File       string     `help:"YAML file listing identities" required:"" type:"existingfile"`
	BcryptCost int        `help:"bcrypt work factor" default:"12" env:"MOONTRAVEL_BCRYPT_COST"`
	Store      StoreFlags `embed:""`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seed, err := parseSeed(f)
	if err != nil {
		return err
	}

	stores, closeStores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	// seeding never creates sessions, so any secret will do
	secret := make([]byte, auth.MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		SessionSecret: secret,
		SessionTTL:    auth.DefaultSessionTTL,
		BcryptCost:    c.BcryptCost,
	}, stores, nil)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	created, skipped, err := seedIdentities(ctx, srv.Login(), seed.Identities)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("Seed completed")
	return nil
}

func parseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// seedIdentities signs every identity up. Conflicts are skipped so the command
// can be re-run; any other failure stops it.
func seedIdentities(ctx context.Context, service *login.Service, identities []SeedIdentity) (int, int, error) {
	var created, skipped int

	for _, identity := range identities {
		result, err := service.Signup(ctx, login.SignupRequest{
			Username:  identity.Username,
			Email:     identity.Email,
			Password:  identity.Password,
			Role:      identity.Role,
			HotelName: identity.HotelName,
		})
		if err != nil {
			if apierr.KindOf(err) == apierr.KindConflict {
				log.Warn().Str("email", identity.Email).Msg("Identity already exists, skipping")
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("failed to seed %s: %w", identity.Email, err)
		}

		if result.HotelFailed {
			log.Warn().Str("user_id", result.UserID.String()).Msg("Hotel insert failed for seeded manager")
		}

		created++
	}

	return created, skipped, nil
}
