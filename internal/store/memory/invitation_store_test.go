package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

func newInvitation(email string) *models.Invitation {
	return &models.Invitation{
		InvitationID: uuid.Must(uuid.NewV7()),
		Email:        email,
		TenantID:     uuid.Must(uuid.NewV7()),
		Status:       models.InvitationStatusPending,
		CreatedAt:    time.Now(),
	}
}

func TestInvitationStore_ListByEmail(t *testing.T) {
	t.Run("matches email case-insensitively", func(t *testing.T) {
		st := NewInvitationStore()
		ctx := context.Background()

		inv := newInvitation("Jane@Example.com")
		require.NoError(t, st.Create(ctx, inv))

		listed, err := st.ListByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, inv.InvitationID, listed[0].InvitationID)
	})

	t.Run("no invitations returns empty list", func(t *testing.T) {
		st := NewInvitationStore()

		listed, err := st.ListByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.Empty(t, listed)
	})
}

func TestInvitationStore_UpdateStatus(t *testing.T) {
	t.Run("accept records acceptance time", func(t *testing.T) {
		st := NewInvitationStore()
		ctx := context.Background()

		inv := newInvitation("jane@example.com")
		require.NoError(t, st.Create(ctx, inv))

		err := st.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted)
		require.NoError(t, err)

		got, err := st.Get(ctx, inv.InvitationID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, got.Status)
		require.NotNil(t, got.AcceptedAt)
	})

	t.Run("accepting twice is a no-op", func(t *testing.T) {
		st := NewInvitationStore()
		ctx := context.Background()

		inv := newInvitation("jane@example.com")
		require.NoError(t, st.Create(ctx, inv))

		require.NoError(t, st.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted))
		require.NoError(t, st.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted))

		got, err := st.Get(ctx, inv.InvitationID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, got.Status)
	})

	t.Run("missing invitation returns error", func(t *testing.T) {
		st := NewInvitationStore()

		err := st.UpdateStatus(context.Background(), uuid.Must(uuid.NewV7()), models.InvitationStatusAccepted)
		require.Equal(t, store.ErrInvitationNotFound, err)
	})
}
