package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// InvitationStore implements store.InvitationStore using in-memory storage.
type InvitationStore struct {
	mu sync.RWMutex

	invitations map[uuid.UUID]*models.Invitation // invitation_id -> Invitation
}

// NewInvitationStore creates a new in-memory invitation store.
func NewInvitationStore() *InvitationStore {
	return &InvitationStore{
		invitations: make(map[uuid.UUID]*models.Invitation),
	}
}

// Create creates a new invitation in memory.
func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invitations[inv.InvitationID]; exists {
		return store.ErrAlreadyExists
	}

	clone := *inv
	s.invitations[inv.InvitationID] = &clone

	return nil
}

// Get retrieves an invitation by ID.
func (s *InvitationStore) Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.invitations[invitationID]
	if !exists {
		return nil, store.ErrInvitationNotFound
	}

	clone := *inv
	return &clone, nil
}

// ListByEmail returns all invitations addressed to an email, matched
// case-insensitively.
func (s *InvitationStore) ListByEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Invitation
	for _, inv := range s.invitations {
		if strings.EqualFold(inv.Email, email) {
			clone := *inv
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].InvitationID.String() < result[j].InvitationID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus sets the status of an invitation. Accepting records the
// acceptance time.
func (s *InvitationStore) UpdateStatus(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invitations[invitationID]
	if !exists {
		return store.ErrInvitationNotFound
	}

	if inv.Status == status {
		return nil
	}

	inv.Status = status
	if status == models.InvitationStatusAccepted {
		now := time.Now()
		inv.AcceptedAt = &now
	}

	return nil
}
