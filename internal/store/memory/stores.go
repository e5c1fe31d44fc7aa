package memory

import "github.com/tasklane/tasklane/internal/store"

// NewStores returns a complete set of in-memory stores.
func NewStores() *store.Stores {
	return &store.Stores{
		Tenants:       NewTenantStore(),
		Organizations: NewOrganizationStore(),
		Workspaces:    NewWorkspaceStore(),
		Memberships:   NewMembershipStore(),
		Invitations:   NewInvitationStore(),
		Boards:        NewBoardStore(),
		Profiles:      NewProfileStore(),
	}
}
