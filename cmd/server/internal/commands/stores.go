package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/store"
	memorystore "github.com/wolfeidau/moontravel/internal/store/memory"
	postgresstore "github.com/wolfeidau/moontravel/internal/store/postgres"
)

type StoreFlags struct {
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"MOONTRAVEL_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	ConnectRetry    int32 `help:"seconds to keep retrying the first connection, negative disables" default:"30"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"MOONTRAVEL_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		ConnectRetry:    s.ConnectRetry,
	}
}

// open returns the configured stores and a function releasing them.
func (f *StoreFlags) open(ctx context.Context) (store.Stores, func(), error) {
	switch f.StoreType {
	case "postgres":
		if err := f.PostgresStore.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, stores, err := postgresstore.Open(ctx, f.PostgresStore.poolConfig(), f.PostgresStore.AutoMigrate)
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to open postgres stores: %w", err)
		}

		log.Info().Bool("auto_migrate", f.PostgresStore.AutoMigrate).Msg("Using PostgreSQL stores with shared connection pool")
		return stores, pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}
