package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tasklane/tasklane/internal/config"
	"github.com/tasklane/tasklane/internal/identity"
	"github.com/tasklane/tasklane/internal/logger"
	"github.com/tasklane/tasklane/internal/scopestate"
	"github.com/tasklane/tasklane/internal/server"
	"github.com/tasklane/tasklane/internal/store"
	memorystore "github.com/tasklane/tasklane/internal/store/memory"
	postgresstore "github.com/tasklane/tasklane/internal/store/postgres"
	"github.com/tasklane/tasklane/internal/telemetry"
)

type ServeCmd struct {
	Config string `help:"path to YAML/JSON config file" env:"TASKLANE_CONFIG"`

	SessionPublicKey string `help:"path to the identity provider's PEM-encoded EC public key" required:"" env:"TASKLANE_SESSION_PUBLIC_KEY"`

	Tracing bool `help:"enable tracing and metrics export" default:"false" env:"TASKLANE_TRACING"`

	StoreType string             `help:"store type (memory or postgres)" default:"memory" env:"TASKLANE_STORE_TYPE" enum:"memory,postgres"`
	Postgres  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString      string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	MaxConns        int32  `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32  `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32  `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32  `help:"maximum connection idle time in seconds" default:"1800"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	logr := logger.Setup(globals.Dev)
	log.Logger = logr

	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("dev", globals.Dev).Msg("starting server")

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	if c.Tracing {
		log.Info().Msg("tracing is enabled")
		shutdown, err := telemetry.Init(ctx, "tasklane-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown telemetry")
			}
		}()
	}

	stores, cleanup, err := c.buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	publicKeyPEM, err := os.ReadFile(c.SessionPublicKey)
	if err != nil {
		return fmt.Errorf("failed to read session public key: %w", err)
	}

	verifier, err := identity.NewVerifierFromPEM(string(publicKeyPEM))
	if err != nil {
		return err
	}

	activeScope, err := scopestate.NewFileStore(cfg.ScopeStatePath)
	if err != nil {
		return fmt.Errorf("failed to open scope state store: %w", err)
	}

	srv := server.NewServer(stores, verifier, activeScope, cfg.PlatformAdminGroup)
	httpServer := configureHTTPServer(cfg.ListenAddr, srv.Handler(logr, cfg.TrustedOrigins))

	// Serve until interrupted, then drain in-flight requests.
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening for connections")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-signalCtx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

// buildStores selects the storage backend. The returned cleanup closes
// any underlying pool and is safe to call once.
func (c *ServeCmd) buildStores(ctx context.Context, cfg *config.Config) (*store.Stores, func(), error) {
	if c.StoreType == "postgres" {
		connString := c.Postgres.ConnString
		if connString == "" {
			connString = cfg.Postgres.ConnString
		}

		poolCfg := &postgresstore.PoolConfig{
			ConnString:      connString,
			MaxConns:        c.Postgres.MaxConns,
			MinConns:        c.Postgres.MinConns,
			MaxConnLifetime: c.Postgres.MaxConnLifetime,
			MaxConnIdleTime: c.Postgres.MaxConnIdleTime,
		}

		stores, pool, err := postgresstore.NewStores(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}

		log.Info().Msg("using PostgreSQL stores")
		return stores, pool.Close, nil
	}

	log.Info().Msg("using in-memory stores")
	return memorystore.NewStores(), func() {}, nil
}
