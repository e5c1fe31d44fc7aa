package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/scope"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/store"
)

// resolveResponse is the payload for GET /api/resolve. TenantID and
// TenantName are present only for tenant-bound destinations; FirstName
// only when a profile exists for the subject.
type resolveResponse struct {
	Destination string `json:"destination"`
	Path        string `json:"path"`
	TenantID    string `json:"tenantId,omitempty"`
	TenantName  string `json:"tenantName,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := s.bearerIdentity(r)
	if err != nil {
		// Verification failures resolve the same way a missing session
		// does: back to login.
		log.Debug().Err(err).Msg("token verification failed")
		id = nil
	}

	dest := s.resolver.Resolve(ctx, id)

	resp := resolveResponse{
		Destination: string(dest.Kind),
		Path:        dest.Path(),
	}

	if dest.HasTenant() {
		resp.TenantID = dest.TenantID.String()

		name, err := s.tenantNames.Name(ctx, dest.TenantID)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", dest.TenantID.String()).Msg("failed to look up tenant name")
		} else {
			resp.TenantName = name
		}
	}

	if id != nil {
		profile, err := s.stores.Profiles.Get(ctx, id.Subject)
		switch {
		case err == nil:
			resp.FirstName = profile.FirstName
		case !errors.Is(err, store.ErrProfileNotFound):
			log.Warn().Err(err).Msg("failed to load profile")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// summaryResponse is the payload for GET /api/scope/summary.
type summaryResponse struct {
	TenantID          string   `json:"tenantId"`
	VisibleWorkspaces []string `json:"visibleWorkspaces"`
	OrganizationCount int      `json:"organizationCount"`
	WorkspaceCount    int      `json:"workspaceCount"`
	BoardCount        int      `json:"boardCount"`
	MemberCount       int      `json:"memberCount"`
}

func (s *Server) handleScopeSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := s.bearerIdentity(r)
	if err != nil || id == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	memberships, err := s.stores.Memberships.ListByUser(ctx, id.Subject)
	if err != nil {
		if store.IsAuthError(err) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		log.Error().Err(err).Msg("failed to list memberships")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if len(memberships) == 0 {
		writeError(w, http.StatusForbidden, "no accessible scope")
		return
	}

	sc, err := s.activeScope.Get()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read active scope, using defaults")
		sc = scopestate.ActiveScope{}
	}

	active := selectActive(memberships, sc.WorkspaceID)

	in := scope.Input{
		TenantID:          active.TenantID,
		Memberships:       memberships,
		ActiveOrgID:       sc.OrgID,
		ActiveWorkspaceID: sc.WorkspaceID,
	}

	var result *scope.Aggregate
	if err := s.trackerFor(id.Subject).Run(ctx, s.aggregator, in, func(a *scope.Aggregate) {
		result = a
	}); err != nil {
		log.Error().Err(err).Msg("scope aggregation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// A newer aggregation for the same subject started while this one
	// was in flight; its completion wins.
	if result == nil {
		writeError(w, http.StatusConflict, "superseded by a newer aggregation")
		return
	}

	visible := make([]string, 0, len(result.VisibleWorkspaces))
	for workspaceID := range result.VisibleWorkspaces {
		visible = append(visible, workspaceID.String())
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TenantID:          active.TenantID.String(),
		VisibleWorkspaces: visible,
		OrganizationCount: result.OrganizationCount,
		WorkspaceCount:    result.WorkspaceCount,
		BoardCount:        result.BoardCount,
		MemberCount:       result.MemberCount,
	})
}

// scopeSwitchRequest is the payload for PUT /api/scope. The write is a
// full replacement of the selection: omitted ids clear the stored value.
type scopeSwitchRequest struct {
	WorkspaceID      *uuid.UUID `json:"workspaceId"`
	OrgID            *uuid.UUID `json:"orgId"`
	SidebarCollapsed bool       `json:"sidebarCollapsed"`
}

func (s *Server) handleScopeSwitch(w http.ResponseWriter, r *http.Request) {
	id, err := s.bearerIdentity(r)
	if err != nil || id == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req scopeSwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := scopestate.Update{
		WorkspaceID:      &req.WorkspaceID,
		OrgID:            &req.OrgID,
		SidebarCollapsed: &req.SidebarCollapsed,
	}

	if err := s.activeScope.Set(update); err != nil {
		log.Error().Err(err).Msg("failed to persist scope switch")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info().
		Str("user_sub", id.Subject).
		Any("workspace_id", req.WorkspaceID).
		Any("org_id", req.OrgID).
		Msg("active scope switched")

	w.WriteHeader(http.StatusNoContent)
}

// selectActive picks the membership the summary is computed for: the
// one owning the persisted workspace selection, otherwise the first in
// stable list order.
func selectActive(memberships []*models.Membership, workspaceID *uuid.UUID) *models.Membership {
	if workspaceID != nil {
		for _, m := range memberships {
			if m.WorkspaceID != nil && *m.WorkspaceID == *workspaceID {
				return m
			}
		}
	}
	return memberships[0]
}

// trackerFor returns the subject's aggregation tracker, creating it on
// first use. Trackers are per subject so one user's re-triggered
// aggregation never discards another user's in-flight run.
func (s *Server) trackerFor(userSub string) *scope.Tracker {
	s.trackerMu.Lock()
	defer s.trackerMu.Unlock()

	if s.trackers == nil {
		s.trackers = make(map[string]*scope.Tracker)
	}
	t, ok := s.trackers[userSub]
	if !ok {
		t = scope.NewTracker()
		s.trackers[userSub] = t
	}
	return t
}
