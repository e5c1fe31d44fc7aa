package store

// Stores bundles every store interface for wiring. Both the memory and
// postgres packages provide a constructor returning a fully-populated set.
type Stores struct {
	Tenants       TenantStore
	Organizations OrganizationStore
	Workspaces    WorkspaceStore
	Memberships   MembershipStore
	Invitations   InvitationStore
	Boards        BoardStore
	Profiles      ProfileStore
}
