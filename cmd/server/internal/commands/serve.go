package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/logger"
	"github.com/wolfeidau/cloudconsole/internal/server"
	"github.com/wolfeidau/cloudconsole/internal/store"
	memorystore "github.com/wolfeidau/cloudconsole/internal/store/memory"
	postgresstore "github.com/wolfeidau/cloudconsole/internal/store/postgres"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"localhost:8080" env:"CLOUDCONSOLE_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"CLOUDCONSOLE_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"CLOUDCONSOLE_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"CLOUDCONSOLE_CORS_ORIGINS"`

	Tracing bool   `help:"enable tracing" default:"false" env:"CLOUDCONSOLE_TRACING"`
	Seed    string `help:"YAML file of organizations, users, datacenters and vpcs to load on startup" type:"existingfile" env:"CLOUDCONSOLE_SEED"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"CLOUDCONSOLE_STORE_TYPE" enum:"memory,postgres"`
	AutoMigrate   bool               `help:"run database migrations on startup" default:"false" env:"CLOUDCONSOLE_POSTGRES_AUTO_MIGRATE"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "cloudconsole-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = telemetry.NoopShutdown
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	var stores store.Stores
	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.Validate(); err != nil {
			return err
		}

		pgStores, pool, err := postgresstore.Open(ctx, c.PostgresStore.poolConfig(), c.AutoMigrate)
		if err != nil {
			return fmt.Errorf("failed to open postgres stores: %w", err)
		}
		defer pool.Close()

		stores = pgStores
		log.Info().Bool("auto_migrate", c.AutoMigrate).Msg("Using PostgreSQL stores with shared connection pool")

	default:
		stores = memorystore.NewStores()
		log.Info().Msg("Using in-memory stores")
	}

	if c.Seed != "" {
		seed, err := store.LoadSeedFile(c.Seed)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, stores); err != nil {
			return fmt.Errorf("failed to apply seed: %w", err)
		}
	}

	handler, err := server.New(stores).Handler(log, server.Options{
		CORSOrigins: c.CORSOrigins,
		Tracing:     c.Tracing,
	})
	if err != nil {
		return err
	}

	tls := c.Cert != "" && c.Key != ""
	log.Info().Str("addr", c.Listen).Bool("tls", tls).Msg("Starting HTTP server")

	return server.Serve(ctx, server.ConfigureHTTPServer(c.Listen, handler), c.Cert, c.Key)
}
