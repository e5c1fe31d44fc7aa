package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

// MembershipStore defines the interface for membership storage operations.
//
// List order matters to role resolution: when no persisted active scope
// matches, the first listed membership becomes the deterministic default.
// Implementations must therefore return memberships in a stable order
// (creation time, then ID).
type MembershipStore interface {
	// Create creates a new membership.
	// Returns ErrMembershipExists if a membership with the same ID already exists.
	Create(ctx context.Context, m *models.Membership) error

	// Get retrieves a membership by ID.
	// Returns ErrMembershipNotFound if the membership doesn't exist.
	Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error)

	// ListByUser returns all memberships for a subject across tenants,
	// in stable order.
	ListByUser(ctx context.Context, userSub string) ([]*models.Membership, error)

	// ListByOrganization returns all memberships scoped to an organization,
	// in stable order.
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Membership, error)

	// SetStatus flips a membership between active and inactive.
	// Returns ErrMembershipNotFound if the membership doesn't exist.
	SetStatus(ctx context.Context, membershipID uuid.UUID, status models.MembershipStatus) error
}
