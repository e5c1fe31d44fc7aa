package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using in-memory storage.
type WorkspaceStore struct {
	mu sync.RWMutex

	workspaces map[uuid.UUID]*models.Workspace // workspace_id -> Workspace
}

// NewWorkspaceStore creates a new in-memory workspace store.
func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{
		workspaces: make(map[uuid.UUID]*models.Workspace),
	}
}

// Create creates a new workspace in memory.
func (s *WorkspaceStore) Create(ctx context.Context, ws *models.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[ws.WorkspaceID]; exists {
		return store.ErrAlreadyExists
	}

	clone := *ws
	s.workspaces[ws.WorkspaceID] = &clone

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, exists := s.workspaces[workspaceID]
	if !exists {
		return nil, store.ErrWorkspaceNotFound
	}

	clone := *ws
	return &clone, nil
}

// ListByTenant returns every workspace under a tenant.
func (s *WorkspaceStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Workspace
	for _, ws := range s.workspaces {
		if ws.TenantID == tenantID {
			clone := *ws
			result = append(result, &clone)
		}
	}

	sortWorkspaces(result)

	return result, nil
}

// ListByOrganization returns every workspace under an organization.
func (s *WorkspaceStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Workspace
	for _, ws := range s.workspaces {
		if ws.OrgID != nil && *ws.OrgID == orgID {
			clone := *ws
			result = append(result, &clone)
		}
	}

	sortWorkspaces(result)

	return result, nil
}

func sortWorkspaces(workspaces []*models.Workspace) {
	sort.Slice(workspaces, func(i, j int) bool {
		if workspaces[i].CreatedAt.Equal(workspaces[j].CreatedAt) {
			return workspaces[i].WorkspaceID.String() < workspaces[j].WorkspaceID.String()
		}
		return workspaces[i].CreatedAt.Before(workspaces[j].CreatedAt)
	})
}

// BoardStore implements store.BoardStore using in-memory storage.
type BoardStore struct {
	mu sync.RWMutex

	boards map[uuid.UUID]*models.Board // board_id -> Board
}

// NewBoardStore creates a new in-memory board store.
func NewBoardStore() *BoardStore {
	return &BoardStore{
		boards: make(map[uuid.UUID]*models.Board),
	}
}

// Create creates a new board in memory.
func (s *BoardStore) Create(ctx context.Context, board *models.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boards[board.BoardID]; exists {
		return store.ErrAlreadyExists
	}

	clone := *board
	s.boards[board.BoardID] = &clone

	return nil
}

// ListByWorkspace returns all boards in a workspace.
func (s *BoardStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Board
	for _, board := range s.boards {
		if board.WorkspaceID == workspaceID {
			clone := *board
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].BoardID.String() < result[j].BoardID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
