//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*store.Stores, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	stores, pool, err := NewStores(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return stores, cleanup
}

func createTenant(t *testing.T, ctx context.Context, stores *store.Stores, name string) *models.Tenant {
	t.Helper()
	now := time.Now()
	tenant := &models.Tenant{
		TenantID:    uuid.Must(uuid.NewV7()),
		CompanyName: name,
		Status:      models.TenantStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, stores.Tenants.Create(ctx, tenant))
	return tenant
}

func TestIntegration_MembershipStore(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	tenant := createTenant(t, ctx, stores, "Acme Corp")

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		TenantID:  tenant.TenantID,
		Name:      "Engineering",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, stores.Organizations.Create(ctx, org))

	workspace := &models.Workspace{
		WorkspaceID: uuid.Must(uuid.NewV7()),
		TenantID:    tenant.TenantID,
		OrgID:       &org.OrgID,
		Name:        "Backend",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, stores.Workspaces.Create(ctx, workspace))

	t.Run("create and list preserves creation order", func(t *testing.T) {
		base := time.Now()
		var created []uuid.UUID
		for i := 0; i < 3; i++ {
			m := &models.Membership{
				MembershipID: uuid.Must(uuid.NewV7()),
				UserSub:      "auth0|ordered-user",
				TenantID:     tenant.TenantID,
				Role:         models.RoleMember,
				Status:       models.MembershipStatusActive,
				CreatedAt:    base.Add(time.Duration(i) * time.Millisecond),
				UpdatedAt:    base.Add(time.Duration(i) * time.Millisecond),
			}
			if i == 1 {
				m.OrgID = &org.OrgID
			}
			if i == 2 {
				m.OrgID = &org.OrgID
				m.WorkspaceID = &workspace.WorkspaceID
			}
			require.NoError(t, stores.Memberships.Create(ctx, m))
			created = append(created, m.MembershipID)
		}

		listed, err := stores.Memberships.ListByUser(ctx, "auth0|ordered-user")
		require.NoError(t, err)
		require.Len(t, listed, 3)
		for i, m := range listed {
			require.Equal(t, created[i], m.MembershipID)
		}

		// Tiers round-trip through nullable scope columns.
		require.Equal(t, models.ScopeTierTenant, listed[0].Tier())
		require.Equal(t, models.ScopeTierOrganization, listed[1].Tier())
		require.Equal(t, models.ScopeTierWorkspace, listed[2].Tier())
	})

	t.Run("duplicate create returns exists", func(t *testing.T) {
		m := &models.Membership{
			MembershipID: uuid.Must(uuid.NewV7()),
			UserSub:      "auth0|dup-user",
			TenantID:     tenant.TenantID,
			Role:         models.RoleOwner,
			Status:       models.MembershipStatusActive,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		require.NoError(t, stores.Memberships.Create(ctx, m))

		err := stores.Memberships.Create(ctx, m)
		require.ErrorIs(t, err, store.ErrMembershipExists)
	})

	t.Run("set status deactivates", func(t *testing.T) {
		m := &models.Membership{
			MembershipID: uuid.Must(uuid.NewV7()),
			UserSub:      "auth0|status-user",
			TenantID:     tenant.TenantID,
			Role:         models.RoleMember,
			Status:       models.MembershipStatusActive,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		require.NoError(t, stores.Memberships.Create(ctx, m))

		require.NoError(t, stores.Memberships.SetStatus(ctx, m.MembershipID, models.MembershipStatusInactive))

		got, err := stores.Memberships.Get(ctx, m.MembershipID)
		require.NoError(t, err)
		require.False(t, got.IsActive())
	})

	t.Run("list by organization", func(t *testing.T) {
		listed, err := stores.Memberships.ListByOrganization(ctx, org.OrgID)
		require.NoError(t, err)
		require.NotEmpty(t, listed)
		for _, m := range listed {
			require.NotNil(t, m.OrgID)
			require.Equal(t, org.OrgID, *m.OrgID)
		}
	})

	t.Run("get missing returns not found", func(t *testing.T) {
		_, err := stores.Memberships.Get(ctx, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrMembershipNotFound)
	})
}

func TestIntegration_InvitationStore(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	tenant := createTenant(t, ctx, stores, "Globex")

	t.Run("list by email is case-insensitive", func(t *testing.T) {
		inv := &models.Invitation{
			InvitationID: uuid.Must(uuid.NewV7()),
			Email:        "Casey@Example.COM",
			TenantID:     tenant.TenantID,
			Token:        "tok-case-insensitive",
			Status:       models.InvitationStatusPending,
			CreatedAt:    time.Now(),
		}
		require.NoError(t, stores.Invitations.Create(ctx, inv))

		listed, err := stores.Invitations.ListByEmail(ctx, "casey@example.com")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, inv.InvitationID, listed[0].InvitationID)
	})

	t.Run("update status is idempotent", func(t *testing.T) {
		inv := &models.Invitation{
			InvitationID: uuid.Must(uuid.NewV7()),
			Email:        "drew@example.com",
			TenantID:     tenant.TenantID,
			Token:        "tok-idempotent",
			Status:       models.InvitationStatusPending,
			CreatedAt:    time.Now(),
		}
		require.NoError(t, stores.Invitations.Create(ctx, inv))

		require.NoError(t, stores.Invitations.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted))

		got, err := stores.Invitations.Get(ctx, inv.InvitationID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, got.Status)
		require.NotNil(t, got.AcceptedAt)
		firstAccepted := *got.AcceptedAt

		// A second accept must not move the accepted timestamp.
		require.NoError(t, stores.Invitations.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted))

		got, err = stores.Invitations.Get(ctx, inv.InvitationID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, got.Status)
		require.True(t, got.AcceptedAt.Equal(firstAccepted))
	})

	t.Run("concurrent accepts settle on one state", func(t *testing.T) {
		inv := &models.Invitation{
			InvitationID: uuid.Must(uuid.NewV7()),
			Email:        "race@example.com",
			TenantID:     tenant.TenantID,
			Token:        "tok-race",
			Status:       models.InvitationStatusPending,
			CreatedAt:    time.Now(),
		}
		require.NoError(t, stores.Invitations.Create(ctx, inv))

		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			go func() {
				errs <- stores.Invitations.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted)
			}()
		}
		for i := 0; i < 5; i++ {
			require.NoError(t, <-errs)
		}

		got, err := stores.Invitations.Get(ctx, inv.InvitationID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, got.Status)
	})

	t.Run("update missing returns not found", func(t *testing.T) {
		err := stores.Invitations.UpdateStatus(ctx, uuid.Must(uuid.NewV7()), models.InvitationStatusAccepted)
		require.True(t, errors.Is(err, store.ErrInvitationNotFound))
	})
}

func TestIntegration_ProfileStore(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	t.Run("upsert then get", func(t *testing.T) {
		profile := &models.UserProfile{
			UserSub:   "auth0|profile-user",
			Email:     "jamie@example.com",
			FirstName: "Jamie",
		}
		require.NoError(t, stores.Profiles.Upsert(ctx, profile))

		got, err := stores.Profiles.Get(ctx, "auth0|profile-user")
		require.NoError(t, err)
		require.Equal(t, "Jamie", got.FirstName)

		profile.FirstName = "Jay"
		require.NoError(t, stores.Profiles.Upsert(ctx, profile))

		got, err = stores.Profiles.Get(ctx, "auth0|profile-user")
		require.NoError(t, err)
		require.Equal(t, "Jay", got.FirstName)
	})

	t.Run("get missing returns not found", func(t *testing.T) {
		_, err := stores.Profiles.Get(ctx, "auth0|nobody")
		require.ErrorIs(t, err, store.ErrProfileNotFound)
	})
}
