package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

type TenantCmd struct {
	Store StoreFlags `embed:""`

	Create     TenantCreateCmd     `cmd:"" help:"Create a tenant"`
	Suspend    TenantSuspendCmd    `cmd:"" help:"Suspend a tenant"`
	Reactivate TenantReactivateCmd `cmd:"" help:"Reactivate a suspended tenant"`
	List       TenantListCmd       `cmd:"" help:"List tenants"`
}

type TenantCreateCmd struct {
	Name string `arg:"" help:"Company name"`
}

func (c *TenantCreateCmd) Run(ctx context.Context, parent *TenantCmd) error {
	stores, pool, err := parent.Store.open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	now := time.Now()
	tenant := &models.Tenant{
		TenantID:    uuid.Must(uuid.NewV7()),
		CompanyName: c.Name,
		Status:      models.TenantStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := stores.Tenants.Create(ctx, tenant); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	fmt.Printf("Created tenant %s (%s)\n", tenant.TenantID, tenant.CompanyName)
	return nil
}

type TenantSuspendCmd struct {
	ID string `arg:"" help:"Tenant ID"`
}

func (c *TenantSuspendCmd) Run(ctx context.Context, parent *TenantCmd) error {
	return setTenantStatus(ctx, parent, c.ID, models.TenantStatusSuspended)
}

type TenantReactivateCmd struct {
	ID string `arg:"" help:"Tenant ID"`
}

func (c *TenantReactivateCmd) Run(ctx context.Context, parent *TenantCmd) error {
	return setTenantStatus(ctx, parent, c.ID, models.TenantStatusActive)
}

func setTenantStatus(ctx context.Context, parent *TenantCmd, id string, status models.TenantStatus) error {
	tenantID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}

	stores, pool, err := parent.Store.open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := stores.Tenants.SetStatus(ctx, tenantID, status); err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}

	fmt.Printf("Tenant %s is now %s\n", tenantID, status)
	return nil
}

type TenantListCmd struct{}

func (c *TenantListCmd) Run(ctx context.Context, parent *TenantCmd) error {
	stores, pool, err := parent.Store.open(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	tenants, err := stores.Tenants.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	fmt.Printf("%-36s %-10s %-30s %-20s\n", "Tenant ID", "Status", "Company", "Created At")
	for _, t := range tenants {
		fmt.Printf("%-36s %-10s %-30s %-20s\n",
			t.TenantID,
			t.Status,
			t.CompanyName,
			t.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Printf("\nTotal tenants: %d\n", len(tenants))
	return nil
}
