package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle status of an invitation.
// The only transition is pending -> accepted, and it is monotonic.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
)

// Invitation is a pending grant of membership, keyed by email and
// consumed exactly once by the owning user's session. WorkspaceID is
// nil for tenant-wide invitations.
type Invitation struct {
	InvitationID uuid.UUID // UUIDv7
	Email        string
	TenantID     uuid.UUID
	WorkspaceID  *uuid.UUID
	Token        string // opaque base58 join token, generated at creation
	Status       InvitationStatus
	CreatedAt    time.Time
	AcceptedAt   *time.Time
}

// IsPending returns true if the invitation has not yet been accepted.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}
