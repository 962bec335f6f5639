// Package main is the entry point for the polyshade API server.
//
// It loads configuration, wires the state store, series cache, archive
// client, and overlay service together, mounts the HTTP API, starts the
// hourly refresh scheduler, and serves until a shutdown signal arrives.
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

	"github.com/go-chi/chi/v5"

	"polyshade/internal/api/handlers"
	"polyshade/internal/cache"
	"polyshade/internal/config"
	"polyshade/internal/core"
	"polyshade/internal/external"
	"polyshade/internal/overlay"
	"polyshade/internal/scheduler"
	"polyshade/internal/store"
	"polyshade/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("polyshade API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"archive", cfg.Archive.BaseURL,
	)

	// State store, restored from the snapshot file when one exists.
	st := store.New(cfg.State.SnapshotPath, logger)

	// Archive client behind the resilient base client.
	baseClient := external.NewBaseClient(
		&http.Client{Timeout: cfg.Archive.HTTPTimeout},
		"weather-archive",
		external.RetryPolicy{
			MaxRetries: cfg.Archive.MaxRetries,
			MinWait:    cfg.Archive.RetryMinWait,
			MaxWait:    cfg.Archive.RetryMaxWait,
		},
		"polyshade/1.0",
	)
	archive := weather.NewArchiveClient(baseClient, cfg.Archive.BaseURL, logger)

	// Overlay orchestration over the in-memory series cache.
	svc := overlay.NewService(st, cache.New(), archive, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthCheck = func(ctx context.Context) map[string]any {
		return map[string]any{
			"polygons":     len(st.ListPolygons()),
			"data_sources": len(st.ListDataSources()),
		}
	}

	polygonHandler := handlers.NewPolygonHandler(st, svc, srv.Validator, logger)
	dataSourceHandler := handlers.NewDataSourceHandler(st, svc, srv.Validator, logger)
	timelineHandler := handlers.NewTimelineHandler(st, svc, srv.Validator, logger)
	overlayHandler := handlers.NewOverlayHandler(st, svc, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		polygonHandler.RegisterRoutes(r)
		dataSourceHandler.RegisterRoutes(r)
		timelineHandler.RegisterRoutes(r)
		overlayHandler.RegisterRoutes(r)
	})

	srv.MountRoutes()

	// Warm the cache so restored polygons are colored before the first
	// request arrives.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		svc.RefreshAll(ctx)
		cancel()
	}

	// Hourly background refresh, tracking the archive's publication cadence.
	var sched *scheduler.RefreshScheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.New(svc, cfg.Refresh.CronSpec, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting refresh scheduler: %w", err)
		}
	}

	return serve(srv, cfg, sched, logger)
}

// serve runs the HTTP server until a shutdown signal or server error.
func serve(srv *core.Server, cfg *config.Config, sched *scheduler.RefreshScheduler, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
