package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// ProfileStore implements store.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a new PostgreSQL-backed profile store.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Upsert creates or replaces the profile for a subject.
func (s *ProfileStore) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			user_sub, email, first_name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
		ON CONFLICT (user_sub) DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := s.pool.Exec(ctx, query,
		profile.UserSub,
		profile.Email,
		profile.FirstName,
		now,
		now,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves the profile for a subject.
func (s *ProfileStore) Get(ctx context.Context, userSub string) (*models.UserProfile, error) {
	query := `
		SELECT user_sub, email, first_name, created_at, updated_at
		FROM user_profiles
		WHERE user_sub = $1
	`

	var profile models.UserProfile
	err := s.pool.QueryRow(ctx, query, userSub).Scan(
		&profile.UserSub,
		&profile.Email,
		&profile.FirstName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", mapPostgresError(err))
	}

	return &profile, nil
}
