// Package resolve implements role resolution: reconciling the global
// role claim, per-tenant membership rows, invitation state, and tenant
// suspension into a single deterministic destination.
package resolve

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/identity"
	"github.com/tasklane/tasklane/internal/invites"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultPlatformAdminGroup is the group claim that marks a platform
// operator. Comparison is case-insensitive.
const DefaultPlatformAdminGroup = "platform-admins"

// Resolver turns an authenticated identity into a destination. It is
// stateless given its inputs: every resolution reads memberships,
// invitations, tenant status and the persisted active scope fresh, so
// running it twice without intervening mutation yields the same result.
type Resolver struct {
	memberships store.MembershipStore
	tenants     store.TenantStore
	invites     *invites.Manager
	activeScope scopestate.Store

	platformAdminGroup string
}

// NewResolver creates a role resolver.
// If platformAdminGroup is empty, DefaultPlatformAdminGroup is used.
func NewResolver(
	memberships store.MembershipStore,
	tenants store.TenantStore,
	inviteMgr *invites.Manager,
	activeScope scopestate.Store,
	platformAdminGroup string,
) *Resolver {
	if platformAdminGroup == "" {
		platformAdminGroup = DefaultPlatformAdminGroup
	}

	return &Resolver{
		memberships:        memberships,
		tenants:            tenants,
		invites:            inviteMgr,
		activeScope:        activeScope,
		platformAdminGroup: platformAdminGroup,
	}
}

// Resolve runs the full resolution algorithm. It never returns an
// error: every failure terminates in one of the enumerated
// destinations. Unauthenticated and rate-limited backend failures route
// to Login (re-authentication resolves them); everything else routes to
// NoAccess.
func (r *Resolver) Resolve(ctx context.Context, id *identity.Identity) Destination {
	started := time.Now()

	dest := r.resolve(ctx, id)

	m := telemetry.GetMetrics()
	m.ResolutionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("destination", string(dest.Kind)),
	))
	m.ResolutionDuration.Record(ctx, float64(time.Since(started).Milliseconds()))

	return dest
}

func (r *Resolver) resolve(ctx context.Context, id *identity.Identity) Destination {
	// 1. No authenticated subject.
	if id == nil || id.Subject == "" {
		return Login()
	}

	// 2. Platform role always wins, regardless of membership content.
	if id.HasGroup(r.platformAdminGroup) {
		return PlatformAdmin()
	}

	// 3. Membership rows for the subject.
	memberships, err := r.memberships.ListByUser(ctx, id.Subject)
	if err != nil {
		return r.routeFailure(err, "list memberships")
	}

	if len(memberships) == 0 {
		if r.invites.HasPending(ctx, id.Email) {
			return PendingInvitation()
		}
		return NoAccess()
	}

	// 4. Active membership: prefer the one matching the persisted
	// workspace selection, otherwise the first in stable list order.
	active := r.selectActive(memberships)

	// 5. A member/owner with a pending invite elsewhere is sent to
	// accept it before entering their existing workspace.
	if active.Role != models.RoleTenantAdmin && r.invites.HasPending(ctx, id.Email) {
		return PendingInvitation()
	}

	// 6. Tenant suspension check, fatal on failure.
	tenant, err := r.tenants.Get(ctx, active.TenantID)
	if err != nil {
		return r.routeFailure(err, "get tenant")
	}
	if tenant.IsSuspended() {
		return Suspended()
	}

	// 7-8. Role-specific landing. Tenant admins consume their matching
	// pending invitation on the way in.
	switch active.Role {
	case models.RoleTenantAdmin:
		if err := r.invites.AcceptMatching(ctx, id.Email, active.TenantID, active.WorkspaceID); err != nil {
			return r.routeFailure(err, "accept invitation")
		}
		return TenantAdmin(active.TenantID)
	case models.RoleOwner:
		return Owner(active.TenantID)
	default:
		return Member(active.TenantID)
	}
}

// selectActive picks the membership matching the persisted workspace
// selection if one exists, otherwise the first membership. List order is
// stable but carries no meaning beyond "deterministic default".
func (r *Resolver) selectActive(memberships []*models.Membership) *models.Membership {
	scope, err := r.activeScope.Get()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read active scope, using first membership")
		return memberships[0]
	}

	if scope.WorkspaceID != nil {
		for _, m := range memberships {
			if m.WorkspaceID != nil && *m.WorkspaceID == *scope.WorkspaceID {
				return m
			}
		}
	}

	return memberships[0]
}

// routeFailure maps a backend failure to a terminal destination per the
// propagation policy: auth-class errors go back to login, everything
// else (including a missing tenant) is no-access.
func (r *Resolver) routeFailure(err error, op string) Destination {
	if store.IsAuthError(err) {
		log.Debug().Err(err).Str("op", op).Msg("resolution interrupted by auth failure")
		return Login()
	}

	log.Warn().Err(err).Str("op", op).Msg("resolution failed")
	return NoAccess()
}
