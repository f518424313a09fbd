package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/moontravel/internal/store"
)

// NewStores builds every store on top of a shared pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Identities: NewIdentityStore(pool),
		Sessions:   NewSessionStore(pool),
		Tokens:     NewTokenStore(pool),
		Audit:      NewAuditStore(pool),
		Hotels:     NewHotelStore(pool),
	}
}

// Open connects to PostgreSQL, optionally applies migrations, and returns the
// pool with the stores built on it. The caller closes the pool.
func Open(ctx context.Context, cfg *PoolConfig, autoMigrate bool) (*pgxpool.Pool, store.Stores, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, store.Stores{}, err
	}

	if autoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, store.Stores{}, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return pool, NewStores(pool), nil
}
