package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the leaf container for task boards. A workspace either
// belongs to an organization (OrgID set) or hangs directly off the
// tenant (OrgID nil).
type Workspace struct {
	WorkspaceID uuid.UUID  // UUIDv7
	TenantID    uuid.UUID  // UUIDv7, FK to tenants
	OrgID       *uuid.UUID // UUIDv7, FK to organizations; nil for tenant-direct workspaces
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Board is a task board inside a workspace. Board content (columns,
// cards) lives outside this core; only the record itself is counted.
type Board struct {
	BoardID     uuid.UUID // UUIDv7
	WorkspaceID uuid.UUID // UUIDv7, FK to workspaces
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
