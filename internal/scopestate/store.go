// Package scopestate persists the user's last-used scope selection
// (active workspace/organization and the sidebar collapse flag) across
// process restarts. It is read once at startup and written only in
// response to an explicit user switch; background resolution never
// writes it.
package scopestate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const stateFileName = "scope.json"

// ActiveScope is the persisted scope selection. Nil ids mean "no
// explicit selection"; resolution then falls back to the first listed
// membership.
type ActiveScope struct {
	WorkspaceID      *uuid.UUID `json:"workspace_id,omitempty"`
	OrgID            *uuid.UUID `json:"org_id,omitempty"`
	SidebarCollapsed bool       `json:"sidebar_collapsed"`
}

// Update carries a partial write. Nil fields leave the stored value
// untouched.
type Update struct {
	WorkspaceID      **uuid.UUID
	OrgID            **uuid.UUID
	SidebarCollapsed *bool
}

// Store is the active-scope persistence interface. Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the current active scope. A store with no prior writes
	// returns the zero value, never an error for "nothing stored yet".
	Get() (ActiveScope, error)

	// Set applies a partial update and persists the result.
	Set(update Update) error
}

// FileStore implements Store on a small JSON file, by default under
// ~/.tasklane/.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed scope store.
// If baseDir is empty, uses ~/.tasklane/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".tasklane")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create scope state directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("scope state store initialized")

	return &FileStore{path: filepath.Join(baseDir, stateFileName)}, nil
}

// Get reads the persisted scope. A missing file is the zero value.
func (s *FileStore) Get() (ActiveScope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Set applies a partial update and rewrites the file atomically.
func (s *FileStore) Set(update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}

	applyUpdate(&current, update)

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scope state: %w", err)
	}

	// Write to a temp file then rename so a crash mid-write never
	// leaves a truncated state file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write scope state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace scope state: %w", err)
	}

	return nil
}

func (s *FileStore) read() (ActiveScope, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ActiveScope{}, nil
		}
		return ActiveScope{}, fmt.Errorf("failed to read scope state: %w", err)
	}

	var scope ActiveScope
	if err := json.Unmarshal(data, &scope); err != nil {
		// A corrupt state file is not worth failing startup over.
		log.Warn().Err(err).Str("path", s.path).Msg("scope state file corrupt, resetting")
		return ActiveScope{}, nil
	}

	return scope, nil
}

// MemoryStore implements Store without persistence, for tests.
type MemoryStore struct {
	mu    sync.Mutex
	scope ActiveScope
}

// NewMemoryStore creates an in-memory scope store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current scope.
func (s *MemoryStore) Get() (ActiveScope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scope, nil
}

// Set applies a partial update.
func (s *MemoryStore) Set(update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyUpdate(&s.scope, update)
	return nil
}

func applyUpdate(scope *ActiveScope, update Update) {
	if update.WorkspaceID != nil {
		scope.WorkspaceID = *update.WorkspaceID
	}
	if update.OrgID != nil {
		scope.OrgID = *update.OrgID
	}
	if update.SidebarCollapsed != nil {
		scope.SidebarCollapsed = *update.SidebarCollapsed
	}
}

// SetWorkspace is a convenience wrapper for the common explicit-switch
// write: select a workspace (or clear it with nil).
func SetWorkspace(st Store, workspaceID *uuid.UUID) error {
	return st.Set(Update{WorkspaceID: &workspaceID})
}

// SetOrg selects an organization (or clears it with nil).
func SetOrg(st Store, orgID *uuid.UUID) error {
	return st.Set(Update{OrgID: &orgID})
}
