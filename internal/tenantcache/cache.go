// Package tenantcache caches tenant display names by id. Entries are
// populated lazily and never invalidated within a session: tenant names
// change rarely enough that staleness is acceptable. Callers must Reset
// the cache on sign-out/sign-in.
package tenantcache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/store"
)

// Cache is a lazy tenant-name lookup cache.
type Cache struct {
	tenants store.TenantStore

	mu    sync.RWMutex
	names map[uuid.UUID]string
}

// New creates a tenant-name cache backed by the given store.
func New(tenants store.TenantStore) *Cache {
	return &Cache{
		tenants: tenants,
		names:   make(map[uuid.UUID]string),
	}
}

// Name returns the tenant's company name, fetching and caching it on
// first use.
func (c *Cache) Name(ctx context.Context, tenantID uuid.UUID) (string, error) {
	c.mu.RLock()
	name, ok := c.names[tenantID]
	c.mu.RUnlock()

	if ok {
		return name, nil
	}

	tenant, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.names[tenantID] = tenant.CompanyName
	c.mu.Unlock()

	log.Debug().Str("tenant_id", tenantID.String()).Msg("tenant name cached")

	return tenant.CompanyName, nil
}

// Reset drops every cached entry. Called on sign-out/sign-in so a new
// session never sees names cached for the previous one.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.names = make(map[uuid.UUID]string)
	c.mu.Unlock()
}
