package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/internal/identity"
	"github.com/tasklane/tasklane/internal/models"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/store/memory"
)

type testHarness struct {
	stores      *store.Stores
	activeScope scopestate.Store
	handler     http.Handler
	signingKey  *ecdsa.PrivateKey
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	verifier, err := identity.NewVerifierFromPEM(string(publicPEM))
	require.NoError(t, err)

	stores := memory.NewStores()
	activeScope := scopestate.NewMemoryStore()

	srv := NewServer(stores, verifier, activeScope, "")

	return &testHarness{
		stores:      stores,
		activeScope: activeScope,
		handler:     srv.Handler(zerolog.Nop(), []string{"http://localhost:3000"}),
		signingKey:  key,
	}
}

func (h *testHarness) token(t *testing.T, sub, email string, groups ...string) string {
	t.Helper()

	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:  email,
		Groups: groups,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(h.signingKey)
	require.NoError(t, err)
	return signed
}

func (h *testHarness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func seedTenantWithMember(t *testing.T, stores *store.Stores, userSub string) (*models.Tenant, *models.Workspace) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	tenant := &models.Tenant{
		TenantID:    uuid.Must(uuid.NewV7()),
		CompanyName: "Acme Corp",
		Status:      models.TenantStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, stores.Tenants.Create(ctx, tenant))

	workspace := &models.Workspace{
		WorkspaceID: uuid.Must(uuid.NewV7()),
		TenantID:    tenant.TenantID,
		Name:        "Backend",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, stores.Workspaces.Create(ctx, workspace))

	require.NoError(t, stores.Boards.Create(ctx, &models.Board{
		BoardID:     uuid.Must(uuid.NewV7()),
		WorkspaceID: workspace.WorkspaceID,
		Name:        "Sprint",
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	require.NoError(t, stores.Memberships.Create(ctx, &models.Membership{
		MembershipID: uuid.Must(uuid.NewV7()),
		UserSub:      userSub,
		TenantID:     tenant.TenantID,
		WorkspaceID:  &workspace.WorkspaceID,
		Role:         models.RoleMember,
		Status:       models.MembershipStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	return tenant, workspace
}

func TestHealth(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestResolve_noTokenRoutesToLogin(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/api/resolve", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "login", resp.Destination)
	require.Equal(t, "/login", resp.Path)
}

func TestResolve_garbageTokenRoutesToLogin(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/api/resolve", "not-a-jwt", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "login", resp.Destination)
}

func TestResolve_memberLandsOnBoard(t *testing.T) {
	h := newTestHarness(t)
	tenant, _ := seedTenantWithMember(t, h.stores, "auth0|casey")

	require.NoError(t, h.stores.Profiles.Upsert(context.Background(), &models.UserProfile{
		UserSub:   "auth0|casey",
		Email:     "casey@example.com",
		FirstName: "Casey",
	}))

	w := h.do(t, http.MethodGet, "/api/resolve", h.token(t, "auth0|casey", "casey@example.com"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "member", resp.Destination)
	require.Equal(t, "/tenant/"+tenant.TenantID.String()+"/board", resp.Path)
	require.Equal(t, tenant.TenantID.String(), resp.TenantID)
	require.Equal(t, "Acme Corp", resp.TenantName)
	require.Equal(t, "Casey", resp.FirstName)
}

func TestResolve_platformAdmin(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/api/resolve", h.token(t, "auth0|ops", "ops@example.com", "platform-admins"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "platform_admin", resp.Destination)
	require.Equal(t, "/platform/dashboard", resp.Path)
	require.Empty(t, resp.TenantID)
}

func TestScopeSummary_requiresAuth(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/api/scope/summary", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScopeSummary_noMemberships(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodGet, "/api/scope/summary", h.token(t, "auth0|nobody", "nobody@example.com"), "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestScopeSummary_countsVisibleScope(t *testing.T) {
	h := newTestHarness(t)
	tenant, workspace := seedTenantWithMember(t, h.stores, "auth0|casey")

	w := h.do(t, http.MethodGet, "/api/scope/summary", h.token(t, "auth0|casey", "casey@example.com"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, tenant.TenantID.String(), resp.TenantID)
	require.Equal(t, []string{workspace.WorkspaceID.String()}, resp.VisibleWorkspaces)
	require.Equal(t, 1, resp.WorkspaceCount)
	require.Equal(t, 1, resp.BoardCount)
}

func TestScopeSwitch_persistsSelection(t *testing.T) {
	h := newTestHarness(t)
	_, workspace := seedTenantWithMember(t, h.stores, "auth0|casey")

	body := `{"workspaceId":"` + workspace.WorkspaceID.String() + `","sidebarCollapsed":true}`
	w := h.do(t, http.MethodPut, "/api/scope", h.token(t, "auth0|casey", "casey@example.com"), body)
	require.Equal(t, http.StatusNoContent, w.Code)

	sc, err := h.activeScope.Get()
	require.NoError(t, err)
	require.NotNil(t, sc.WorkspaceID)
	require.Equal(t, workspace.WorkspaceID, *sc.WorkspaceID)
	require.Nil(t, sc.OrgID)
	require.True(t, sc.SidebarCollapsed)
}

func TestScopeSwitch_requiresAuth(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodPut, "/api/scope", "", `{"sidebarCollapsed":false}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScopeSwitch_rejectsMalformedBody(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, http.MethodPut, "/api/scope", h.token(t, "auth0|casey", "casey@example.com"), `{"workspaceId": 42}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
