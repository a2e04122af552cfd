// Package main is the entrypoint for the hazardlens API server.
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

	"github.com/kiranshivaraju/hazardlens/internal/ai"
	"github.com/kiranshivaraju/hazardlens/internal/api"
	"github.com/kiranshivaraju/hazardlens/internal/api/handler"
	mw "github.com/kiranshivaraju/hazardlens/internal/api/middleware"
	"github.com/kiranshivaraju/hazardlens/internal/archive"
	"github.com/kiranshivaraju/hazardlens/internal/cache"
	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/internal/pipeline"
	"github.com/kiranshivaraju/hazardlens/internal/report"
	"github.com/kiranshivaraju/hazardlens/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env,
		"snapshot_backend", cfg.Snapshot.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	pgStore := store.NewPostgresStore(pool)
	snaps := newSnapshotter(cfg.Snapshot, redisCache)

	analyzer := pipeline.NewService(provider,
		pipeline.OptionsFromConfig(cfg.Pipeline, cfg.AI), pgStore, snaps, slog.Default())
	reporter := report.NewService(snaps,
		report.NewComposer(func() report.Renderer { return report.NewPDFRenderer() }, slog.Default()))

	router := api.NewRouter(dependencies(cfg, pgStore, redisCache, snaps, analyzer, reporter))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := newHTTPServer(addr, cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newSnapshotter picks the archive snapshot backend.
func newSnapshotter(cfg config.SnapshotConfig, c cache.Cache) archive.Snapshotter {
	if cfg.Backend == "redis" {
		return archive.NewRedisSnapshot(c, cfg.TTL)
	}
	return archive.NewFileSnapshot(cfg.Path, archive.WithRetention(cfg.TTL))
}

func dependencies(cfg *config.Config, s store.Store, c cache.Cache, snaps archive.Snapshotter,
	analyzer handler.Analyzer, reporter handler.Reporter) api.Dependencies {
	maxUpload := cfg.Server.MaxUploadBytes
	return api.Dependencies{
		Auth:      mw.NewAuth(s),
		RateLimit: mw.NewRateLimit(c, cfg.Server.RateLimitPerMin),

		HealthHandler:    handler.NewHealthHandler(s, c),
		AnalyzeHandler:   handler.NewAnalyzeHandler(analyzer, maxUpload),
		ProblemsHandler:  handler.NewProblemsHandler(analyzer, maxUpload),
		ReportHandler:    handler.NewReportHandler(reporter),
		LatestArchive:    handler.NewLatestArchiveHandler(snaps),
		ListRuns:         handler.NewListRunsHandler(s),
		GetRun:           handler.NewGetRunHandler(s),
		RunArchive:       handler.NewRunArchiveHandler(snaps),
		CreateKeyHandler: handler.NewCreateKeyHandler(s),
		ListKeysHandler:  handler.NewListKeysHandler(s),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(s),
	}
}

// newHTTPServer sets timeouts. WriteTimeout covers a whole analyze call,
// which waits on several model round trips.
func newHTTPServer(addr string, cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
