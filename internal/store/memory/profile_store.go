package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// ProfileStore implements store.ProfileStore using in-memory storage.
type ProfileStore struct {
	mu sync.RWMutex

	profiles map[string]*models.UserProfile // user_sub -> UserProfile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*models.UserProfile),
	}
}

// Upsert creates or replaces the profile for a subject.
func (s *ProfileStore) Upsert(ctx context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *profile
	if existing, exists := s.profiles[profile.UserSub]; exists {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = time.Now()
	s.profiles[profile.UserSub] = &clone

	return nil
}

// Get retrieves the profile for a subject.
func (s *ProfileStore) Get(ctx context.Context, userSub string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[userSub]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	clone := *profile
	return &clone, nil
}
