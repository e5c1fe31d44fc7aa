package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using PostgreSQL.
type WorkspaceStore struct {
	pool *pgxpool.Pool
}

// NewWorkspaceStore creates a new PostgreSQL-backed workspace store.
func NewWorkspaceStore(pool *pgxpool.Pool) *WorkspaceStore {
	return &WorkspaceStore{pool: pool}
}

// Create creates a new workspace in the database. The foreign keys
// enforce that the referenced tenant and organization exist; tenant
// consistency between the two is checked here since the schema cannot
// express it.
func (s *WorkspaceStore) Create(ctx context.Context, ws *models.Workspace) error {
	if ws.OrgID != nil {
		var orgTenant uuid.UUID
		err := s.pool.QueryRow(ctx, `SELECT tenant_id FROM organizations WHERE org_id = $1`, *ws.OrgID).Scan(&orgTenant)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrOrganizationNotFound
			}
			return fmt.Errorf("failed to check organization tenant: %w", mapPostgresError(err))
		}
		if orgTenant != ws.TenantID {
			return fmt.Errorf("workspace tenant %s does not match organization tenant %s", ws.TenantID, orgTenant)
		}
	}

	query := `
		INSERT INTO workspaces (
			workspace_id, tenant_id, org_id, name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.pool.Exec(ctx, query,
		ws.WorkspaceID,
		ws.TenantID,
		ws.OrgID,
		ws.Name,
		ws.CreatedAt,
		ws.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create workspace: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("workspace_id", ws.WorkspaceID.String()).
		Str("tenant_id", ws.TenantID.String()).
		Msg("created workspace")

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	query := `
		SELECT workspace_id, tenant_id, org_id, name, created_at, updated_at
		FROM workspaces
		WHERE workspace_id = $1
	`

	var ws models.Workspace
	err := s.pool.QueryRow(ctx, query, workspaceID).Scan(
		&ws.WorkspaceID,
		&ws.TenantID,
		&ws.OrgID,
		&ws.Name,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to get workspace: %w", mapPostgresError(err))
	}

	return &ws, nil
}

// ListByTenant returns every workspace under a tenant.
func (s *WorkspaceStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Workspace, error) {
	query := `
		SELECT workspace_id, tenant_id, org_id, name, created_at, updated_at
		FROM workspaces
		WHERE tenant_id = $1
		ORDER BY created_at, workspace_id
	`

	return s.list(ctx, query, tenantID)
}

// ListByOrganization returns every workspace under an organization.
func (s *WorkspaceStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Workspace, error) {
	query := `
		SELECT workspace_id, tenant_id, org_id, name, created_at, updated_at
		FROM workspaces
		WHERE org_id = $1
		ORDER BY created_at, workspace_id
	`

	return s.list(ctx, query, orgID)
}

func (s *WorkspaceStore) list(ctx context.Context, query string, arg any) ([]*models.Workspace, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(
			&ws.WorkspaceID,
			&ws.TenantID,
			&ws.OrgID,
			&ws.Name,
			&ws.CreatedAt,
			&ws.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		result = append(result, &ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workspaces: %w", mapPostgresError(err))
	}

	return result, nil
}

// BoardStore implements store.BoardStore using PostgreSQL.
type BoardStore struct {
	pool *pgxpool.Pool
}

// NewBoardStore creates a new PostgreSQL-backed board store.
func NewBoardStore(pool *pgxpool.Pool) *BoardStore {
	return &BoardStore{pool: pool}
}

// Create creates a new board in the database.
func (s *BoardStore) Create(ctx context.Context, board *models.Board) error {
	query := `
		INSERT INTO boards (
			board_id, workspace_id, name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		board.BoardID,
		board.WorkspaceID,
		board.Name,
		board.CreatedAt,
		board.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create board: %w", mapPostgresError(err))
	}

	return nil
}

// ListByWorkspace returns all boards in a workspace.
func (s *BoardStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Board, error) {
	query := `
		SELECT board_id, workspace_id, name, created_at, updated_at
		FROM boards
		WHERE workspace_id = $1
		ORDER BY created_at, board_id
	`

	rows, err := s.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Board
	for rows.Next() {
		var board models.Board
		if err := rows.Scan(
			&board.BoardID,
			&board.WorkspaceID,
			&board.Name,
			&board.CreatedAt,
			&board.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		result = append(result, &board)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", mapPostgresError(err))
	}

	return result, nil
}
