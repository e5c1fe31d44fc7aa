package scope

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
)

// gatedWorkspaceStore blocks ListByTenant until released, to let a test
// hold one aggregation in flight while another completes.
type gatedWorkspaceStore struct {
	store.WorkspaceStore
	gate    chan struct{}
	blockOn uuid.UUID
}

func (g *gatedWorkspaceStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Workspace, error) {
	if tenantID == g.blockOn {
		<-g.gate
	}
	return g.WorkspaceStore.ListByTenant(ctx, tenantID)
}

func TestTracker_DiscardsSupersededRun(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.addWorkspace(t, nil, 1)

	gate := make(chan struct{})
	gated := &gatedWorkspaceStore{WorkspaceStore: w.stores.Workspaces, gate: gate, blockOn: w.tenantID}
	agg := NewAggregator(gated, w.stores.Boards, w.stores.Memberships)

	tracker := NewTracker()
	in := Input{
		TenantID:    w.tenantID,
		Memberships: []*models.Membership{w.membership("sub-1", models.RoleOwner, nil, nil)},
	}

	var mu sync.Mutex
	applied := 0

	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})
	go func() {
		defer wg.Done()
		close(started)
		// This run blocks inside the workspace listing until released.
		err := tracker.Run(ctx, agg, in, func(*Aggregate) {
			mu.Lock()
			applied++
			mu.Unlock()
		})
		require.NoError(t, err)
	}()

	<-started
	// A small delay so the first run has taken its generation before the
	// second begins.
	time.Sleep(10 * time.Millisecond)

	// The second run supersedes the first. Its aggregation also passes
	// through the gated store, so release two listings.
	go func() {
		gate <- struct{}{}
		gate <- struct{}{}
	}()

	err := tracker.Run(ctx, agg, in, func(*Aggregate) {
		mu.Lock()
		applied++
		mu.Unlock()
	})
	require.NoError(t, err)

	wg.Wait()

	// Only the newest run applied; the superseded completion was discarded.
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, applied)
}

func TestTracker_CancelledRunNeverApplies(t *testing.T) {
	w := newWorld(t)

	w.addWorkspace(t, nil, 0)

	tracker := NewTracker()
	agg := w.agg

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Run(ctx, agg, Input{
		TenantID:    w.tenantID,
		Memberships: []*models.Membership{w.membership("sub-1", models.RoleOwner, nil, nil)},
	}, func(*Aggregate) {
		t.Fatal("cancelled run must not apply")
	})
	require.ErrorIs(t, err, context.Canceled)
}
