package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the tenant-level role carried by a membership.
type Role string

const (
	RoleTenantAdmin Role = "tenant_admin"
	RoleOwner       Role = "owner"
	RoleMember      Role = "member"
)

// MembershipStatus represents the status of a membership.
type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusInactive MembershipStatus = "inactive"
)

// ScopeTier identifies how wide a membership's visibility reaches.
type ScopeTier string

const (
	// ScopeTierWorkspace grants visibility of a single workspace.
	ScopeTierWorkspace ScopeTier = "workspace"
	// ScopeTierOrganization grants visibility of every workspace under one organization.
	ScopeTierOrganization ScopeTier = "organization"
	// ScopeTierTenant grants visibility of every workspace under the tenant.
	ScopeTierTenant ScopeTier = "tenant"
)

// Membership is an authorization record binding a user (by subject id)
// to a scope within a tenant. Exactly one of the following holds:
// WorkspaceID set (workspace-scoped), OrgID set with WorkspaceID nil
// (organization-scoped), or both nil (tenant-wide).
type Membership struct {
	MembershipID uuid.UUID // UUIDv7
	UserSub      string    // subject id from the identity provider
	TenantID     uuid.UUID
	OrgID        *uuid.UUID
	WorkspaceID  *uuid.UUID
	Role         Role
	Status       MembershipStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tier returns the membership's scope tier, derived from which scope
// keys are set.
func (m *Membership) Tier() ScopeTier {
	switch {
	case m.WorkspaceID != nil:
		return ScopeTierWorkspace
	case m.OrgID != nil:
		return ScopeTierOrganization
	default:
		return ScopeTierTenant
	}
}

// IsActive returns true if the membership has not been deactivated.
func (m *Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}
