package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

// WorkspaceStore defines the interface for workspace storage operations.
// A workspace's TenantID must match the TenantID of any organization it
// references; implementations reject mismatches at create time where
// they can enforce it.
type WorkspaceStore interface {
	// Create creates a new workspace.
	// Returns ErrAlreadyExists if a workspace with the same ID already exists.
	Create(ctx context.Context, ws *models.Workspace) error

	// Get retrieves a workspace by ID.
	// Returns ErrWorkspaceNotFound if the workspace doesn't exist.
	Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)

	// ListByTenant returns every workspace under a tenant, including
	// workspaces attached directly to the tenant, ordered by creation time.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Workspace, error)

	// ListByOrganization returns every workspace under an organization,
	// ordered by creation time.
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Workspace, error)
}

// BoardStore defines the read surface this core needs over task boards.
// Board content semantics live outside the core; aggregation only counts
// board records per workspace.
type BoardStore interface {
	// Create creates a new board.
	Create(ctx context.Context, board *models.Board) error

	// ListByWorkspace returns all boards in a workspace, ordered by
	// creation time.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Board, error)
}
