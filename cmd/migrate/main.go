// Command migrate creates the remote store's tables, constraints and
// notify triggers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/podium/internal/adapters/remote"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	store := remote.New(cfg.DatabaseDSN, cfg.Debug)
	defer func() { _ = store.Close() }()

	if err := remote.CreateTables(ctx, store.DB()); err != nil {
		log.Fatal(ctx, "migration failed", logger.Error(err))
	}

	log.Info(ctx, "migration complete")
}
