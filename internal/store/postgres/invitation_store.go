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

// InvitationStore implements store.InvitationStore using PostgreSQL.
type InvitationStore struct {
	pool *pgxpool.Pool
}

// NewInvitationStore creates a new PostgreSQL-backed invitation store.
func NewInvitationStore(pool *pgxpool.Pool) *InvitationStore {
	return &InvitationStore{pool: pool}
}

// Create creates a new invitation in the database.
func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (
			invitation_id, email, tenant_id, workspace_id, token,
			status, created_at, accepted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		inv.InvitationID,
		inv.Email,
		inv.TenantID,
		inv.WorkspaceID,
		inv.Token,
		inv.Status,
		inv.CreatedAt,
		inv.AcceptedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create invitation: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("invitation_id", inv.InvitationID.String()).
		Str("tenant_id", inv.TenantID.String()).
		Msg("created invitation")

	return nil
}

// Get retrieves an invitation by ID.
func (s *InvitationStore) Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	query := `
		SELECT invitation_id, email, tenant_id, workspace_id, token,
		       status, created_at, accepted_at
		FROM invitations
		WHERE invitation_id = $1
	`

	var inv models.Invitation
	err := s.pool.QueryRow(ctx, query, invitationID).Scan(
		&inv.InvitationID,
		&inv.Email,
		&inv.TenantID,
		&inv.WorkspaceID,
		&inv.Token,
		&inv.Status,
		&inv.CreatedAt,
		&inv.AcceptedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", mapPostgresError(err))
	}

	return &inv, nil
}

// ListByEmail returns all invitations addressed to an email, matched
// case-insensitively via the lower(email) index.
func (s *InvitationStore) ListByEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	query := `
		SELECT invitation_id, email, tenant_id, workspace_id, token,
		       status, created_at, accepted_at
		FROM invitations
		WHERE lower(email) = lower($1)
		ORDER BY created_at, invitation_id
	`

	rows, err := s.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.InvitationID,
			&inv.Email,
			&inv.TenantID,
			&inv.WorkspaceID,
			&inv.Token,
			&inv.Status,
			&inv.CreatedAt,
			&inv.AcceptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		result = append(result, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", mapPostgresError(err))
	}

	return result, nil
}

// UpdateStatus sets the status of an invitation. The pending status
// guard in the WHERE clause makes concurrent accepts race-free: only
// one update transitions the row, later ones match zero rows and still
// succeed because the invitation exists in the target state.
func (s *InvitationStore) UpdateStatus(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error {
	var acceptedAt *time.Time
	if status == models.InvitationStatusAccepted {
		now := time.Now()
		acceptedAt = &now
	}

	query := `
		UPDATE invitations
		SET status = $2, accepted_at = COALESCE($3, accepted_at)
		WHERE invitation_id = $1 AND status <> $2
	`

	tag, err := s.pool.Exec(ctx, query, invitationID, status, acceptedAt)
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		// Either the row is already in the target state (fine) or it
		// doesn't exist.
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE invitation_id = $1)`, invitationID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check invitation: %w", mapPostgresError(err))
		}
		if !exists {
			return store.ErrInvitationNotFound
		}
	}

	log.Debug().
		Str("invitation_id", invitationID.String()).
		Str("status", string(status)).
		Msg("invitation status updated")

	return nil
}
