package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// MembershipStore implements store.MembershipStore using PostgreSQL.
// Every list query orders by (created_at, membership_id) so the
// "first membership" default in role resolution is deterministic.
type MembershipStore struct {
	pool *pgxpool.Pool
}

// NewMembershipStore creates a new PostgreSQL-backed membership store.
func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

// Create creates a new membership in the database.
func (s *MembershipStore) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (
			membership_id, user_sub, tenant_id, org_id, workspace_id,
			role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		m.MembershipID,
		m.UserSub,
		m.TenantID,
		m.OrgID,
		m.WorkspaceID,
		m.Role,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrMembershipExists
		}
		return fmt.Errorf("failed to create membership: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("membership_id", m.MembershipID.String()).
		Str("user_sub", m.UserSub).
		Str("tenant_id", m.TenantID.String()).
		Str("role", string(m.Role)).
		Msg("created membership")

	return nil
}

// Get retrieves a membership by ID.
func (s *MembershipStore) Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT membership_id, user_sub, tenant_id, org_id, workspace_id,
		       role, status, created_at, updated_at
		FROM memberships
		WHERE membership_id = $1
	`

	var m models.Membership
	err := s.pool.QueryRow(ctx, query, membershipID).Scan(
		&m.MembershipID,
		&m.UserSub,
		&m.TenantID,
		&m.OrgID,
		&m.WorkspaceID,
		&m.Role,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", mapPostgresError(err))
	}

	return &m, nil
}

// ListByUser returns all memberships for a subject.
func (s *MembershipStore) ListByUser(ctx context.Context, userSub string) ([]*models.Membership, error) {
	query := `
		SELECT membership_id, user_sub, tenant_id, org_id, workspace_id,
		       role, status, created_at, updated_at
		FROM memberships
		WHERE user_sub = $1
		ORDER BY created_at, membership_id
	`

	return s.list(ctx, query, userSub)
}

// ListByOrganization returns all memberships scoped to an organization.
func (s *MembershipStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT membership_id, user_sub, tenant_id, org_id, workspace_id,
		       role, status, created_at, updated_at
		FROM memberships
		WHERE org_id = $1
		ORDER BY created_at, membership_id
	`

	return s.list(ctx, query, orgID)
}

// SetStatus flips a membership between active and inactive.
func (s *MembershipStore) SetStatus(ctx context.Context, membershipID uuid.UUID, status models.MembershipStatus) error {
	query := `
		UPDATE memberships
		SET status = $2, updated_at = $3
		WHERE membership_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, membershipID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}

	return nil
}

func (s *MembershipStore) list(ctx context.Context, query string, arg any) ([]*models.Membership, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.MembershipID,
			&m.UserSub,
			&m.TenantID,
			&m.OrgID,
			&m.WorkspaceID,
			&m.Role,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", mapPostgresError(err))
	}

	return result, nil
}
