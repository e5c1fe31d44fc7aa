// Package server exposes the resolution and scope-aggregation engine
// over a small JSON HTTP API consumed by the web client.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpx "github.com/tasklane/tasklane/internal/http"
	"github.com/tasklane/tasklane/internal/identity"
	"github.com/tasklane/tasklane/internal/invites"
	"github.com/tasklane/tasklane/internal/logger"
	"github.com/tasklane/tasklane/internal/resolve"
	"github.com/tasklane/tasklane/internal/scope"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/store"
	"github.com/tasklane/tasklane/internal/tenantcache"
)

// Server wires the resolver, aggregator and scope store behind HTTP
// handlers. All state lives in the injected collaborators.
type Server struct {
	stores      *store.Stores
	verifier    *identity.Verifier
	resolver    *resolve.Resolver
	aggregator  *scope.Aggregator
	activeScope scopestate.Store
	tenantNames *tenantcache.Cache

	trackerMu sync.Mutex
	trackers  map[string]*scope.Tracker
}

// NewServer creates a server over the given stores. The verifier
// authenticates bearer tokens; platformAdminGroup configures the group
// claim that short-circuits resolution to the platform dashboard.
func NewServer(stores *store.Stores, verifier *identity.Verifier, activeScope scopestate.Store, platformAdminGroup string) *Server {
	inviteMgr := invites.NewManager(stores.Invitations)

	return &Server{
		stores:      stores,
		verifier:    verifier,
		resolver:    resolve.NewResolver(stores.Memberships, stores.Tenants, inviteMgr, activeScope, platformAdminGroup),
		aggregator:  scope.NewAggregator(stores.Workspaces, stores.Boards, stores.Memberships),
		activeScope: activeScope,
		tenantNames: tenantcache.New(stores.Tenants),
	}
}

// Handler returns the HTTP handler for the server, with request
// logging, client-IP extraction and CORS applied.
func (s *Server) Handler(logr zerolog.Logger, trustedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /api/resolve", s.handleResolve)
	mux.HandleFunc("GET /api/scope/summary", s.handleScopeSummary)
	mux.HandleFunc("PUT /api/scope", s.handleScopeSwitch)

	c := cors.New(cors.Options{
		AllowedOrigins:   trustedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPut},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return logger.Requests(logr)(httpx.WithClientIP(c.Handler(mux)))
}

// bearerIdentity authenticates the Authorization header. A missing
// header yields a nil identity without error; resolution treats that as
// the unauthenticated case.
func (s *Server) bearerIdentity(r *http.Request) (*identity.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	return s.verifier.Verify(tokenStr)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
