// Package invites implements the invitation lifecycle: pending-invite
// lookup by email and the monotonic pending -> accepted transition.
package invites

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/telemetry"
)

// Manager drives invitation state transitions. All operations are safe
// to call concurrently and to retry: acceptance is idempotent.
type Manager struct {
	invitations store.InvitationStore
}

// NewManager creates a new invitation lifecycle manager.
func NewManager(invitations store.InvitationStore) *Manager {
	return &Manager{invitations: invitations}
}

// HasPending reports whether any pending invitation exists for the email.
// A missing or empty email is false, and lookup failures are swallowed:
// resolution treats "could not check" the same as "no invite" rather than
// failing the whole flow.
func (m *Manager) HasPending(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}

	listed, err := m.invitations.ListByEmail(ctx, email)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list invitations, treating as none pending")
		return false
	}

	for _, inv := range listed {
		if inv.IsPending() {
			return true
		}
	}

	return false
}

// AcceptMatching finds the pending invitation for email whose tenant and
// workspace both match the given pair and marks it accepted. No match is
// a silent no-op, which makes the call idempotent: a second invocation
// finds the invitation already accepted and does nothing.
func (m *Manager) AcceptMatching(ctx context.Context, email string, tenantID uuid.UUID, workspaceID *uuid.UUID) error {
	if email == "" {
		return nil
	}

	listed, err := m.invitations.ListByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to list invitations: %w", err)
	}

	for _, inv := range listed {
		if !inv.IsPending() {
			continue
		}
		if inv.TenantID != tenantID {
			continue
		}
		if !workspaceIDsEqual(inv.WorkspaceID, workspaceID) {
			continue
		}

		if err := m.invitations.UpdateStatus(ctx, inv.InvitationID, models.InvitationStatusAccepted); err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}

		telemetry.GetMetrics().InvitationsAccepted.Add(ctx, 1)

		log.Info().
			Str("invitation_id", inv.InvitationID.String()).
			Str("tenant_id", tenantID.String()).
			Msg("invitation accepted")

		return nil
	}

	return nil
}

// Create issues a new invitation with a fresh join token.
func (m *Manager) Create(ctx context.Context, email string, tenantID uuid.UUID, workspaceID *uuid.UUID) (*models.Invitation, error) {
	token, err := NewJoinToken()
	if err != nil {
		return nil, err
	}

	inv := &models.Invitation{
		InvitationID: uuid.Must(uuid.NewV7()),
		Email:        email,
		TenantID:     tenantID,
		WorkspaceID:  workspaceID,
		Token:        token,
		Status:       models.InvitationStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := m.invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

// NewJoinToken generates an opaque invitation token: base58-encoded
// SHA256 of 32 random bytes. Base58 keeps the token copy-paste friendly
// in invite links.
func NewJoinToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	hash := sha256.Sum256(buf[:])
	return base58.Encode(hash[:]), nil
}

func workspaceIDsEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
