package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

// NewStores creates a store set backed by pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(pool),
		Users:         NewUserStore(pool),
		Datacenters:   NewDatacenterStore(pool),
		Vpcs:          NewVpcStore(pool),
	}
}

// Open connects to the database, optionally applies migrations and returns
// the store set. The caller closes the pool.
func Open(ctx context.Context, cfg *PoolConfig, autoMigrate bool) (store.Stores, *pgxpool.Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return store.Stores{}, nil, err
	}

	if autoMigrate {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return NewStores(pool), pool, nil
}
