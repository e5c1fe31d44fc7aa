package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
)

// InvitationStore defines the interface for invitation storage operations.
// Invitations only ever move pending -> accepted; there is no delete.
type InvitationStore interface {
	// Create creates a new invitation.
	// Returns ErrAlreadyExists if an invitation with the same ID already exists.
	Create(ctx context.Context, inv *models.Invitation) error

	// Get retrieves an invitation by ID.
	// Returns ErrInvitationNotFound if the invitation doesn't exist.
	Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)

	// ListByEmail returns all invitations addressed to an email,
	// ordered by creation time. Email matching is case-insensitive.
	ListByEmail(ctx context.Context, email string) ([]*models.Invitation, error)

	// UpdateStatus sets the status of an invitation.
	// Returns ErrInvitationNotFound if the invitation doesn't exist.
	UpdateStatus(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error
}
