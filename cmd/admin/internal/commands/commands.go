// Package commands implements the platform-operator CLI: tenant
// lifecycle administration and invitation issuing, talking directly to
// the storage backend.
package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasklane/tasklane/internal/store"
	postgresstore "github.com/tasklane/tasklane/internal/store/postgres"
)

type Globals struct {
	Dev     bool
	Version string
}

// StoreFlags selects the storage backend shared by every admin command.
type StoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" required:"" env:"POSTGRES_CONNECTION_STRING"`
}

func (f *StoreFlags) open(ctx context.Context) (*store.Stores, *pgxpool.Pool, error) {
	stores, pool, err := postgresstore.NewStores(ctx, &postgresstore.PoolConfig{
		ConnString: f.ConnString,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stores: %w", err)
	}
	return stores, pool, nil
}
