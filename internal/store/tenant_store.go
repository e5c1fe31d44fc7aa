package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

// TenantStore defines the interface for tenant storage operations.
// Tenants are created by platform-admin operations and suspended rather
// than deleted while memberships reference them.
type TenantStore interface {
	// Create creates a new tenant.
	// Returns ErrTenantAlreadyExists if a tenant with the same ID already exists.
	Create(ctx context.Context, tenant *models.Tenant) error

	// Get retrieves a tenant by ID.
	// Returns ErrTenantNotFound if the tenant doesn't exist.
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)

	// SetStatus flips a tenant between active and suspended.
	// Returns ErrTenantNotFound if the tenant doesn't exist.
	SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus) error

	// List returns all tenants ordered by creation time.
	List(ctx context.Context) ([]*models.Tenant, error)
}
