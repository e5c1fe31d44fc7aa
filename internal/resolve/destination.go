package resolve

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind enumerates every terminal outcome of role resolution. The set is
// closed: resolution never produces anything outside it, and the
// presentation layer maps each kind 1:1 onto a route.
type Kind string

const (
	KindLogin             Kind = "login"
	KindNoAccess          Kind = "no_access"
	KindPendingInvitation Kind = "pending_invitation"
	KindSuspended         Kind = "suspended"
	KindPlatformAdmin     Kind = "platform_admin"
	KindTenantAdmin       Kind = "tenant_admin"
	KindOwner             Kind = "owner"
	KindMember            Kind = "member"
)

// Destination is the tagged result of role resolution. TenantID is set
// only for the per-tenant kinds (TenantAdmin, Owner, Member).
type Destination struct {
	Kind     Kind
	TenantID uuid.UUID
}

// Login sends the user to authenticate.
func Login() Destination { return Destination{Kind: KindLogin} }

// NoAccess indicates an authenticated user with no memberships or a
// failed resolution.
func NoAccess() Destination { return Destination{Kind: KindNoAccess} }

// PendingInvitation sends the user to accept an outstanding invite.
func PendingInvitation() Destination { return Destination{Kind: KindPendingInvitation} }

// Suspended indicates the active membership's tenant is suspended.
func Suspended() Destination { return Destination{Kind: KindSuspended} }

// PlatformAdmin is the platform-operator destination; it carries no tenant.
func PlatformAdmin() Destination { return Destination{Kind: KindPlatformAdmin} }

// TenantAdmin lands the user on the tenant administration home.
func TenantAdmin(tenantID uuid.UUID) Destination {
	return Destination{Kind: KindTenantAdmin, TenantID: tenantID}
}

// Owner lands the user on the organization-owner home.
func Owner(tenantID uuid.UUID) Destination {
	return Destination{Kind: KindOwner, TenantID: tenantID}
}

// Member lands the user on the member board view.
func Member(tenantID uuid.UUID) Destination {
	return Destination{Kind: KindMember, TenantID: tenantID}
}

// HasTenant reports whether the destination carries a tenant id.
func (d Destination) HasTenant() bool {
	switch d.Kind {
	case KindTenantAdmin, KindOwner, KindMember:
		return true
	default:
		return false
	}
}

// Path returns the route the presentation layer should navigate to.
// The mapping is exhaustive over Kind.
func (d Destination) Path() string {
	switch d.Kind {
	case KindLogin:
		return "/login"
	case KindNoAccess:
		return "/no-access"
	case KindPendingInvitation:
		return "/pending-invitation"
	case KindSuspended:
		return "/suspended"
	case KindPlatformAdmin:
		return "/platform/dashboard"
	case KindTenantAdmin:
		return fmt.Sprintf("/tenant/%s/admin", d.TenantID)
	case KindOwner:
		return fmt.Sprintf("/tenant/%s/owner", d.TenantID)
	case KindMember:
		return fmt.Sprintf("/tenant/%s/board", d.TenantID)
	default:
		// Unreachable while Kind stays closed.
		return "/no-access"
	}
}
