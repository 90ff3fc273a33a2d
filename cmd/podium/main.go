package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/outbox"
	"github.com/okian/podium/internal/adapters/remote"
	app "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/auth"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Durable local adapters.
	mirror, err := cache.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		loggerInstance.Fatal(ctx, "opening local mirror failed", logger.Error(err))
	}
	defer func() { _ = mirror.Close() }()

	pending, err := outbox.NewSQLiteQueue(cfg.OutboxPath)
	if err != nil {
		loggerInstance.Fatal(ctx, "opening offline queue failed", logger.Error(err))
	}
	defer func() { _ = pending.Close() }()

	// Remote store and its change stream.
	store := remote.New(cfg.DatabaseDSN, cfg.Debug)
	defer func() { _ = store.Close() }()

	var notifications <-chan remote.Notification
	listener := remote.NewPGListener(store.DB())
	if ch, err := listener.Start(ctx); err != nil {
		loggerInstance.Warn(ctx, "change stream unavailable, relying on periodic sync", logger.Error(err))
	} else {
		notifications = ch
		defer func() { _ = listener.Close() }()
	}

	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL())

	// Create and start the service with configuration options
	svc := app.New(store, mirror, pending,
		app.WithLogger(loggerInstance),
		app.WithRoster(cfg.DriverRoster),
		app.WithScorer(scoring.ByScheme(cfg.ScoringScheme)),
		app.WithTokenService(tokens),
		app.WithSyncInterval(cfg.SyncInterval()),
		app.WithPingInterval(cfg.PingInterval()),
		app.WithNotifications(notifications),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	// Metrics endpoint on the custom registry.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "stopped")
}
