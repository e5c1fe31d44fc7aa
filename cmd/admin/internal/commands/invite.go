package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/invites"
)

type InviteCmd struct {
	Store StoreFlags `embed:""`

	Create InviteCreateCmd `cmd:"" help:"Create an invitation"`
	List   InviteListCmd   `cmd:"" help:"List invitations for an email"`
}

type InviteCreateCmd struct {
	Email       string `arg:"" help:"Invitee email address"`
	TenantID    string `help:"Tenant the invitation grants access to" required:""`
	WorkspaceID string `help:"Workspace scope; omit for a tenant-wide invitation"`
}

func (c *InviteCreateCmd) Run(ctx context.Context, parent *InviteCmd) error {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}

	var workspaceID *uuid.UUID
	if c.WorkspaceID != "" {
		parsed, err := uuid.Parse(c.WorkspaceID)
		if err != nil {
			return fmt.Errorf("invalid workspace id: %w", err)
		}
		workspaceID = &parsed
	}

	stores, pool, err := parent.Store.open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	inv, err := invites.NewManager(stores.Invitations).Create(ctx, c.Email, tenantID, workspaceID)
	if err != nil {
		return err
	}

	fmt.Printf("Created invitation %s for %s\n", inv.InvitationID, inv.Email)
	fmt.Printf("Join token: %s\n", inv.Token)
	return nil
}

type InviteListCmd struct {
	Email string `arg:"" help:"Invitee email address"`
}

func (c *InviteListCmd) Run(ctx context.Context, parent *InviteCmd) error {
	stores, pool, err := parent.Store.open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	listed, err := stores.Invitations.ListByEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("failed to list invitations: %w", err)
	}

	fmt.Printf("%-36s %-10s %-36s %-20s\n", "Invitation ID", "Status", "Tenant ID", "Created At")
	for _, inv := range listed {
		fmt.Printf("%-36s %-10s %-36s %-20s\n",
			inv.InvitationID,
			inv.Status,
			inv.TenantID,
			inv.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Printf("\nTotal invitations: %d\n", len(listed))
	return nil
}
