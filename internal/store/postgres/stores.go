package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasklane/tasklane/internal/store"
)

// NewStores creates a connection pool, runs any pending migrations, and
// returns a complete set of PostgreSQL-backed stores. The returned pool
// is shared by every store; the caller owns it and must Close it on
// shutdown.
func NewStores(ctx context.Context, cfg *PoolConfig) (*store.Stores, *pgxpool.Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewStoresWithPool(pool), pool, nil
}

// NewStoresWithPool wires stores onto an existing pool. Used by tests
// that manage the pool and migrations themselves.
func NewStoresWithPool(pool *pgxpool.Pool) *store.Stores {
	return &store.Stores{
		Tenants:       NewTenantStore(pool),
		Organizations: NewOrganizationStore(pool),
		Workspaces:    NewWorkspaceStore(pool),
		Memberships:   NewMembershipStore(pool),
		Invitations:   NewInvitationStore(pool),
		Boards:        NewBoardStore(pool),
		Profiles:      NewProfileStore(pool),
	}
}
