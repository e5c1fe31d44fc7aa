// Package scope computes the hierarchical visibility set and badge
// counts for whatever scope is currently active: the union of
// workspaces reachable through tenant-wide, organization-scoped and
// workspace-scoped memberships, optionally narrowed to a single
// selected workspace.
package scope

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Input carries everything one aggregation needs. Memberships are the
// caller's own rows (already listed during resolution); the aggregator
// filters them to the given tenant.
type Input struct {
	TenantID          uuid.UUID
	Memberships       []*models.Membership
	ActiveOrgID       *uuid.UUID
	ActiveWorkspaceID *uuid.UUID
}

// Aggregate is the result of one scope aggregation. VisibleWorkspaces is
// the full visible set before any single-workspace narrowing; the counts
// are computed over the metrics scope (the narrowed set when an active
// workspace is selected).
type Aggregate struct {
	VisibleWorkspaces map[uuid.UUID]*models.Workspace

	OrganizationCount int
	WorkspaceCount    int
	BoardCount        int
	MemberCount       int
}

// VisibleIDs returns the ids of the full visible workspace set.
func (a *Aggregate) VisibleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.VisibleWorkspaces))
	for id := range a.VisibleWorkspaces {
		ids = append(ids, id)
	}
	return ids
}

// Aggregator computes visibility sets and counts. A failing sub-query
// degrades its branch to empty rather than aborting the aggregation:
// the counts feed non-critical badges, so partial data beats an error.
type Aggregator struct {
	workspaces  store.WorkspaceStore
	boards      store.BoardStore
	memberships store.MembershipStore
}

// NewAggregator creates a scope aggregator.
func NewAggregator(workspaces store.WorkspaceStore, boards store.BoardStore, memberships store.MembershipStore) *Aggregator {
	return &Aggregator{
		workspaces:  workspaces,
		boards:      boards,
		memberships: memberships,
	}
}

// Aggregate runs the full set-union computation. All unions are over
// identifier-keyed maps, so overlapping membership rows never inflate a
// count. Sub-queries run concurrently and the result is assembled only
// after every one of them has returned or failed.
func (a *Aggregator) Aggregate(ctx context.Context, in Input) (*Aggregate, error) {
	started := time.Now()
	m := telemetry.GetMetrics()
	defer func() {
		m.AggregationsTotal.Add(ctx, 1)
		m.AggregationDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	}()

	directIDs, orgIDs, tenantWide := partition(in)

	visible, err := a.collectVisible(ctx, in.TenantID, directIDs, orgIDs, tenantWide)
	if err != nil {
		return nil, err
	}

	result := &Aggregate{VisibleWorkspaces: visible}

	// Narrowing: an explicitly selected workspace restricts the metrics
	// scope to itself, and a selection outside the visible set zeroes
	// every count.
	metricsScope := visible
	if in.ActiveWorkspaceID != nil {
		ws, ok := visible[*in.ActiveWorkspaceID]
		if !ok {
			return result, nil
		}
		metricsScope = map[uuid.UUID]*models.Workspace{ws.WorkspaceID: ws}
	}

	scopeOrgs := make(map[uuid.UUID]struct{})
	for _, ws := range metricsScope {
		if ws.OrgID != nil {
			scopeOrgs[*ws.OrgID] = struct{}{}
		}
	}
	if in.ActiveOrgID != nil {
		scopeOrgs[*in.ActiveOrgID] = struct{}{}
	}

	result.OrganizationCount = len(scopeOrgs)
	result.WorkspaceCount = len(metricsScope)

	// Board and member counts each fan out per workspace/organization
	// and join before summing.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.BoardCount = a.countBoards(gctx, metricsScope)
		return nil
	})
	g.Go(func() error {
		result.MemberCount = a.countMembers(gctx, scopeOrgs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// partition splits the caller's memberships by scope tier, keeping only
// active non-admin rows for the current tenant. Administrators never
// contribute to team visibility or counts.
func partition(in Input) (directIDs map[uuid.UUID]struct{}, orgIDs map[uuid.UUID]struct{}, tenantWide bool) {
	directIDs = make(map[uuid.UUID]struct{})
	orgIDs = make(map[uuid.UUID]struct{})

	for _, m := range in.Memberships {
		if !m.IsActive() || m.Role == models.RoleTenantAdmin || m.TenantID != in.TenantID {
			continue
		}

		switch m.Tier() {
		case models.ScopeTierWorkspace:
			directIDs[*m.WorkspaceID] = struct{}{}
		case models.ScopeTierOrganization:
			orgIDs[*m.OrgID] = struct{}{}
		case models.ScopeTierTenant:
			tenantWide = true
		}
	}

	// An explicitly selected organization is always expanded, even when
	// no membership names it directly.
	if in.ActiveOrgID != nil {
		orgIDs[*in.ActiveOrgID] = struct{}{}
	}

	return directIDs, orgIDs, tenantWide
}

// collectVisible unions the three scope tiers into one workspace set.
// Every fetch runs concurrently; a failed branch logs, counts as
// degraded, and contributes nothing.
func (a *Aggregator) collectVisible(ctx context.Context, tenantID uuid.UUID, directIDs, orgIDs map[uuid.UUID]struct{}, tenantWide bool) (map[uuid.UUID]*models.Workspace, error) {
	var mu sync.Mutex
	visible := make(map[uuid.UUID]*models.Workspace)

	add := func(workspaces ...*models.Workspace) {
		mu.Lock()
		defer mu.Unlock()
		for _, ws := range workspaces {
			if ws.TenantID != tenantID {
				continue
			}
			visible[ws.WorkspaceID] = ws
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if tenantWide {
		g.Go(func() error {
			listed, err := a.workspaces.ListByTenant(gctx, tenantID)
			if err != nil {
				a.degrade(gctx, err, "list tenant workspaces")
				return nil
			}
			add(listed...)
			return nil
		})
	}

	for orgID := range orgIDs {
		g.Go(func() error {
			listed, err := a.workspaces.ListByOrganization(gctx, orgID)
			if err != nil {
				a.degrade(gctx, err, "list organization workspaces")
				return nil
			}
			add(listed...)
			return nil
		})
	}

	for workspaceID := range directIDs {
		g.Go(func() error {
			ws, err := a.workspaces.Get(gctx, workspaceID)
			if err != nil {
				a.degrade(gctx, err, "get workspace")
				return nil
			}
			add(ws)
			return nil
		})
	}

	// Join barrier: the visible set is complete only after every branch
	// has returned or degraded.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return visible, nil
}

// countBoards sums board records across the metrics scope. Requests are
// issued in parallel and the sum is taken only after every request has
// completed. Transient failures retry briefly before the branch
// degrades to zero.
func (a *Aggregator) countBoards(ctx context.Context, metricsScope map[uuid.UUID]*models.Workspace) int {
	var mu sync.Mutex
	total := 0

	g, gctx := errgroup.WithContext(ctx)

	for workspaceID := range metricsScope {
		g.Go(func() error {
			boards, err := backoff.Retry(gctx, func() ([]*models.Board, error) {
				listed, err := a.boards.ListByWorkspace(gctx, workspaceID)
				if err != nil && !store.IsTransient(err) {
					return nil, backoff.Permanent(err)
				}
				return listed, err
			}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(3))
			if err != nil {
				a.degrade(gctx, err, "list boards")
				return nil
			}

			mu.Lock()
			total += len(boards)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	return total
}

// countMembers counts distinct subjects across active non-admin
// memberships in the metrics scope's organizations. A user holding both
// organization- and workspace-tier rows in the same organization counts
// once.
func (a *Aggregator) countMembers(ctx context.Context, scopeOrgs map[uuid.UUID]struct{}) int {
	var mu sync.Mutex
	subjects := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)

	for orgID := range scopeOrgs {
		g.Go(func() error {
			listed, err := a.memberships.ListByOrganization(gctx, orgID)
			if err != nil {
				a.degrade(gctx, err, "list organization memberships")
				return nil
			}

			mu.Lock()
			for _, m := range listed {
				if m.IsActive() && m.Role != models.RoleTenantAdmin {
					subjects[m.UserSub] = struct{}{}
				}
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	return len(subjects)
}

func (a *Aggregator) degrade(ctx context.Context, err error, op string) {
	log.Warn().Err(err).Str("op", op).Msg("aggregation sub-query failed, degrading to empty")
	telemetry.GetMetrics().DegradedBranchesTotal.Add(ctx, 1)
}
