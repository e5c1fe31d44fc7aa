package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations group workspaces underneath a tenant.
type OrganizationStore interface {
	// Create creates a new organization.
	// Returns ErrAlreadyExists if an organization with the same ID already exists.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// ListByTenant returns all organizations under a tenant, ordered by
	// creation time.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Organization, error)
}
