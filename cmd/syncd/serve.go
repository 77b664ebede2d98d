// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-sync/internal/api"
	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/internal/platform/config"
	"github.com/taibuivan/yomira-sync/internal/platform/constants"
	"github.com/taibuivan/yomira-sync/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-sync/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-sync/internal/platform/redis"
	"github.com/taibuivan/yomira-sync/internal/platform/sec"
	"github.com/taibuivan/yomira-sync/internal/platform/validate"
	"github.com/taibuivan/yomira-sync/internal/reconcile"
	"github.com/taibuivan/yomira-sync/internal/users"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return serve(command.Context())
		},
	}
}

// serve runs the startup sequence and blocks until shutdown.
//
// # Startup Sequence
//
//  1. Load configuration and build the logger.
//  2. Run database migrations when enabled.
//  3. Connect to PostgreSQL, then Redis when configured.
//  4. Wire repositories, the reconciler and HTTP handlers.
//  5. Start the HTTP server with graceful shutdown.
func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// ── 1. Configuration + Logger ─────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("cursor_policy", cfg.CursorPolicy),
		slog.Bool("cache_enabled", cfg.CacheEnabled()),
	)

	// ── 2. Migrations ─────────────────────────────────────────────────────
	if cfg.RunMigrations {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Caught quickly rather than hanging on misconfiguration.
	startupCtx, startupCancel := context.WithTimeout(parent, constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	options := reconcile.Options{CursorPolicy: cfg.CursorPolicy}

	if cfg.CacheEnabled() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer closeRedis(log, rdb)

		health.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
		options.FavouritesCache = redisstore.NewJSONCache(rdb, constants.RedisPrefixFavourites, cfg.SnapshotCacheTTL)
		options.HistoryCache = redisstore.NewJSONCache(rdb, constants.RedisPrefixHistory, cfg.SnapshotCacheTTL)
	}

	// ── 5. Token Service ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return fmt.Errorf("initialize token service: %w", err)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	validator := validate.New()
	transactor := pgstore.NewTransactor(pool)

	catalogRepository := catalog.NewPostgresRepository(pool)
	collectionRepository := collection.NewPostgresRepository(catalogRepository)
	userRepository := users.NewPostgresRepository(pool)

	userService := users.NewService(userRepository, tokens, cfg.JWTTTL, cfg.AllowRegistration)
	reconciler := reconcile.New(transactor, userRepository, catalogRepository, collectionRepository, options)

	liveness, readiness := api.NewHealthHandlers(health, log)

	serverCtx, stopServer := context.WithCancel(parent)
	defer stopServer()

	server := api.NewServer(serverCtx, cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Users:     users.NewHandler(userService, validator),
		Catalog:   catalog.NewHandler(catalog.NewService(catalogRepository)),
		Sync:      reconcile.NewHandler(reconciler, validator),
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case runErr = <-serverErr:
		log.Error("server startup error", slog.Any("error", runErr))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return errors.Join(runErr, fmt.Errorf("shutdown: %w", err))
	}

	log.Info("server stopped cleanly")
	return runErr
}

func closeRedis(log *slog.Logger, client *goredis.Client) {
	log.Info("closing redis client")
	if err := client.Close(); err != nil {
		log.Error("redis close error", slog.Any("error", err))
	}
}
