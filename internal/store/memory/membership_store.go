package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// MembershipStore implements store.MembershipStore using in-memory storage.
type MembershipStore struct {
	mu sync.RWMutex

	memberships map[uuid.UUID]*models.Membership // membership_id -> Membership
}

// NewMembershipStore creates a new in-memory membership store.
func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		memberships: make(map[uuid.UUID]*models.Membership),
	}
}

// Create creates a new membership in memory.
func (s *MembershipStore) Create(ctx context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memberships[m.MembershipID]; exists {
		return store.ErrMembershipExists
	}

	clone := *m
	s.memberships[m.MembershipID] = &clone

	return nil
}

// Get retrieves a membership by ID.
func (s *MembershipStore) Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.memberships[membershipID]
	if !exists {
		return nil, store.ErrMembershipNotFound
	}

	clone := *m
	return &clone, nil
}

// ListByUser returns all memberships for a subject in stable order.
func (s *MembershipStore) ListByUser(ctx context.Context, userSub string) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Membership
	for _, m := range s.memberships {
		if m.UserSub == userSub {
			clone := *m
			result = append(result, &clone)
		}
	}

	sortMemberships(result)

	return result, nil
}

// ListByOrganization returns all memberships scoped to an organization
// in stable order.
func (s *MembershipStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Membership
	for _, m := range s.memberships {
		if m.OrgID != nil && *m.OrgID == orgID {
			clone := *m
			result = append(result, &clone)
		}
	}

	sortMemberships(result)

	return result, nil
}

// SetStatus flips a membership between active and inactive.
func (s *MembershipStore) SetStatus(ctx context.Context, membershipID uuid.UUID, status models.MembershipStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.memberships[membershipID]
	if !exists {
		return store.ErrMembershipNotFound
	}

	m.Status = status
	m.UpdatedAt = time.Now()

	return nil
}

// sortMemberships orders by creation time then ID. Resolution relies on
// this order being stable when no persisted scope matches.
func sortMemberships(memberships []*models.Membership) {
	sort.Slice(memberships, func(i, j int) bool {
		if memberships[i].CreatedAt.Equal(memberships[j].CreatedAt) {
			return memberships[i].MembershipID.String() < memberships[j].MembershipID.String()
		}
		return memberships[i].CreatedAt.Before(memberships[j].CreatedAt)
	})
}
