package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a grouping of workspaces within a tenant.
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	TenantID  uuid.UUID // UUIDv7, FK to tenants
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
