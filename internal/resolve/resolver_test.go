package resolve

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/tasklane/internal/identity"
	"github.com/tasklane/tasklane/internal/invites"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/store/memory"
)

type fixture struct {
	stores   *store.Stores
	invites  *invites.Manager
	scope    scopestate.Store
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stores := memory.NewStores()
	inviteMgr := invites.NewManager(stores.Invitations)
	scope := scopestate.NewMemoryStore()

	return &fixture{
		stores:   stores,
		invites:  inviteMgr,
		scope:    scope,
		resolver: NewResolver(stores.Memberships, stores.Tenants, inviteMgr, scope, ""),
	}
}

func (f *fixture) addTenant(t *testing.T, status models.TenantStatus) uuid.UUID {
	t.Helper()

	tenant := &models.Tenant{
		TenantID:    uuid.Must(uuid.NewV7()),
		CompanyName: "Acme",
		Status:      status,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.stores.Tenants.Create(context.Background(), tenant))

	return tenant.TenantID
}

func (f *fixture) addMembership(t *testing.T, userSub string, tenantID uuid.UUID, role models.Role, workspaceID *uuid.UUID, createdAt time.Time) *models.Membership {
	t.Helper()

	m := &models.Membership{
		MembershipID: uuid.Must(uuid.NewV7()),
		UserSub:      userSub,
		TenantID:     tenantID,
		WorkspaceID:  workspaceID,
		Role:         role,
		Status:       models.MembershipStatusActive,
		CreatedAt:    createdAt,
	}
	require.NoError(t, f.stores.Memberships.Create(context.Background(), m))

	return m
}

func member(sub, email string, groups ...string) *identity.Identity {
	return &identity.Identity{Subject: sub, Email: email, Groups: groups}
}

func TestResolver_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Equal(t, Login(), f.resolver.Resolve(ctx, nil))
	require.Equal(t, Login(), f.resolver.Resolve(ctx, &identity.Identity{}))
}

func TestResolver_PlatformAdminClaimPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Even with a suspended-tenant membership, the platform claim wins.
	tenantID := f.addTenant(t, models.TenantStatusSuspended)
	f.addMembership(t, "sub-1", tenantID, models.RoleOwner, nil, time.Now())

	dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com", "Platform-Admins"))
	require.Equal(t, PlatformAdmin(), dest)
}

func TestResolver_NoMemberships(t *testing.T) {
	ctx := context.Background()

	t.Run("pending invitation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.invites.Create(ctx, "jane@example.com", uuid.Must(uuid.NewV7()), nil)
		require.NoError(t, err)

		dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
		require.Equal(t, PendingInvitation(), dest)
	})

	t.Run("no invitation means no access", func(t *testing.T) {
		f := newFixture(t)

		dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
		require.Equal(t, NoAccess(), dest)
	})
}

func TestResolver_PendingInviteRedirectsNonAdmins(t *testing.T) {
	// End-to-end scenario: active member in workspace W1 of tenant T,
	// plus a pending invite for a different tenant, resolves to the
	// invitation, not Member(T).
	f := newFixture(t)
	ctx := context.Background()

	tenantID := f.addTenant(t, models.TenantStatusActive)
	workspaceID := uuid.Must(uuid.NewV7())
	f.addMembership(t, "sub-1", tenantID, models.RoleMember, &workspaceID, time.Now())

	_, err := f.invites.Create(ctx, "jane@example.com", uuid.Must(uuid.NewV7()), nil)
	require.NoError(t, err)

	dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
	require.Equal(t, PendingInvitation(), dest)
}

func TestResolver_SuspendedTenant(t *testing.T) {
	for _, role := range []models.Role{models.RoleOwner, models.RoleMember, models.RoleTenantAdmin} {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			tenantID := f.addTenant(t, models.TenantStatusSuspended)
			f.addMembership(t, "sub-1", tenantID, role, nil, time.Now())

			dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
			require.Equal(t, Suspended(), dest)
		})
	}
}

func TestResolver_TenantAdminConsumesMatchingInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenantID := f.addTenant(t, models.TenantStatusActive)
	workspaceID := uuid.Must(uuid.NewV7())
	f.addMembership(t, "sub-1", tenantID, models.RoleTenantAdmin, &workspaceID, time.Now())

	inv, err := f.invites.Create(ctx, "jane@example.com", tenantID, &workspaceID)
	require.NoError(t, err)

	dest := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
	require.Equal(t, TenantAdmin(tenantID), dest)

	got, err := f.stores.Invitations.Get(ctx, inv.InvitationID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, got.Status)

	// Re-running resolution after acceptance is a no-op on the invite
	// and yields the same destination.
	require.Equal(t, TenantAdmin(tenantID), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
}

func TestResolver_RoleLanding(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		f := newFixture(t)
		tenantID := f.addTenant(t, models.TenantStatusActive)
		f.addMembership(t, "sub-1", tenantID, models.RoleOwner, nil, time.Now())

		require.Equal(t, Owner(tenantID), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
	})

	t.Run("member", func(t *testing.T) {
		f := newFixture(t)
		tenantID := f.addTenant(t, models.TenantStatusActive)
		f.addMembership(t, "sub-1", tenantID, models.RoleMember, nil, time.Now())

		require.Equal(t, Member(tenantID), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
	})
}

func TestResolver_ActiveScopeSelectsMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two memberships under different tenants: the first is a member,
	// the second an owner in a workspace the user last selected.
	memberTenant := f.addTenant(t, models.TenantStatusActive)
	ownerTenant := f.addTenant(t, models.TenantStatusActive)
	workspaceID := uuid.Must(uuid.NewV7())

	base := time.Now()
	f.addMembership(t, "sub-1", memberTenant, models.RoleMember, nil, base)
	f.addMembership(t, "sub-1", ownerTenant, models.RoleOwner, &workspaceID, base.Add(time.Minute))

	// Without a persisted selection the first membership wins.
	require.Equal(t, Member(memberTenant), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))

	// With the workspace persisted, the matching membership wins.
	require.NoError(t, scopestate.SetWorkspace(f.scope, &workspaceID))
	require.Equal(t, Owner(ownerTenant), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))

	// A persisted workspace with no matching membership falls back to
	// the deterministic default.
	stale := uuid.Must(uuid.NewV7())
	require.NoError(t, scopestate.SetWorkspace(f.scope, &stale))
	require.Equal(t, Member(memberTenant), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
}

func TestResolver_Deterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenantID := f.addTenant(t, models.TenantStatusActive)
	base := time.Now()
	for i := 0; i < 3; i++ {
		f.addMembership(t, "sub-1", tenantID, models.RoleMember, nil, base.Add(time.Duration(i)*time.Second))
	}

	first := f.resolver.Resolve(ctx, member("sub-1", "jane@example.com"))
	for i := 0; i < 5; i++ {
		require.Equal(t, first, f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
	}
}

// failingMembershipStore returns a fixed error from every read.
type failingMembershipStore struct {
	store.MembershipStore
	err error
}

func (f *failingMembershipStore) ListByUser(ctx context.Context, userSub string) ([]*models.Membership, error) {
	return nil, f.err
}

// failingTenantStore returns a fixed error from Get.
type failingTenantStore struct {
	store.TenantStore
	err error
}

func (f *failingTenantStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	return nil, f.err
}

func TestResolver_FailureRouting(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated membership listing routes to login", func(t *testing.T) {
		f := newFixture(t)
		failing := &failingMembershipStore{err: fmt.Errorf("session lost: %w", store.ErrUnauthenticated)}
		r := NewResolver(failing, f.stores.Tenants, f.invites, f.scope, "")

		require.Equal(t, Login(), r.Resolve(ctx, member("sub-1", "jane@example.com")))
	})

	t.Run("rate limited routes to login", func(t *testing.T) {
		f := newFixture(t)
		failing := &failingMembershipStore{err: store.ErrRateLimited}
		r := NewResolver(failing, f.stores.Tenants, f.invites, f.scope, "")

		require.Equal(t, Login(), r.Resolve(ctx, member("sub-1", "jane@example.com")))
	})

	t.Run("transient failure routes to no access", func(t *testing.T) {
		f := newFixture(t)
		failing := &failingMembershipStore{err: store.ErrTransient}
		r := NewResolver(failing, f.stores.Tenants, f.invites, f.scope, "")

		require.Equal(t, NoAccess(), r.Resolve(ctx, member("sub-1", "jane@example.com")))
	})

	t.Run("missing tenant routes to no access", func(t *testing.T) {
		f := newFixture(t)
		// Membership exists, tenant row does not.
		f.addMembership(t, "sub-1", uuid.Must(uuid.NewV7()), models.RoleOwner, nil, time.Now())

		require.Equal(t, NoAccess(), f.resolver.Resolve(ctx, member("sub-1", "jane@example.com")))
	})

	t.Run("unauthenticated tenant fetch routes to login", func(t *testing.T) {
		f := newFixture(t)
		f.addMembership(t, "sub-1", uuid.Must(uuid.NewV7()), models.RoleOwner, nil, time.Now())
		failing := &failingTenantStore{err: store.ErrUnauthenticated}
		r := NewResolver(f.stores.Memberships, failing, f.invites, f.scope, "")

		require.Equal(t, Login(), r.Resolve(ctx, member("sub-1", "jane@example.com")))
	})
}

func TestDestination_Path(t *testing.T) {
	tenantID := uuid.Must(uuid.NewV7())

	tests := []struct {
		dest Destination
		path string
	}{
		{Login(), "/login"},
		{NoAccess(), "/no-access"},
		{PendingInvitation(), "/pending-invitation"},
		{Suspended(), "/suspended"},
		{PlatformAdmin(), "/platform/dashboard"},
		{TenantAdmin(tenantID), "/tenant/" + tenantID.String() + "/admin"},
		{Owner(tenantID), "/tenant/" + tenantID.String() + "/owner"},
		{Member(tenantID), "/tenant/" + tenantID.String() + "/board"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.path, tt.dest.Path())
	}

	require.True(t, TenantAdmin(tenantID).HasTenant())
	require.False(t, Login().HasTenant())
}
