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
	"time"

	"github.com/nyashahama/dx-scoping-backend/internal/api"
	"github.com/nyashahama/dx-scoping-backend/internal/cache"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/config"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development. The level is refined
	// from LOG_LEVEL once config is loaded.
	level := slog.LevelDebug
	if os.Getenv("ENV") == "production" {
		level = slog.LevelInfo
	}
	logger := newLogger(os.Getenv("ENV"), level)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger = newLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "log_level", cfg.LogLevel)

	// ── Catalogue and scoring tables ──────────────────────────────────────────
	// Both fall back to the built-in data when no path is configured.
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	tables, err := scoring.LoadTablesFile(cfg.TablesPath)
	if err != nil {
		return fmt.Errorf("scoring tables: %w", err)
	}
	scorer, err := scoring.NewScorer(tables)
	if err != nil {
		return fmt.Errorf("scorer: %w", err)
	}
	logger.Info("catalogue loaded",
		"questions", cat.Len(),
		"catalog_path", cfg.CatalogPath,
		"tables_path", cfg.TablesPath,
	)

	// ── Document cache (Redis, optional) ──────────────────────────────────────
	var docCache cache.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rc, err := cache.Dial(dialCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		docCache = rc
		logger.Info("redis connected", "ttl", cfg.CacheTTL)
	} else {
		logger.Info("redis not configured, document cache disabled")
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		cat,
		scorer,
		docCache,
		api.Config{
			Env:              cfg.Env,
			ClampMultiSelect: cfg.ClampMultiSelect,
			CacheTTL:         cfg.CacheTTL,
			DateLocation:     cfg.DateLocation,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
