package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus represents the lifecycle status of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents a top-level isolated company account.
// Tenants are owned by the platform and are never deleted while
// memberships reference them; suspension flips Status instead.
type Tenant struct {
	TenantID    uuid.UUID // UUIDv7
	CompanyName string
	Status      TenantStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSuspended returns true if the tenant has been suspended by a platform admin.
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}
