package store

import (
	"context"

	"github.com/tasklane/tasklane/internal/models"
)

// ProfileStore holds display metadata for users. Profiles carry no
// authorization weight.
type ProfileStore interface {
	// Upsert creates or replaces the profile for a subject.
	Upsert(ctx context.Context, profile *models.UserProfile) error

	// Get retrieves the profile for a subject.
	// Returns ErrProfileNotFound if no profile exists.
	Get(ctx context.Context, userSub string) (*models.UserProfile, error)
}
