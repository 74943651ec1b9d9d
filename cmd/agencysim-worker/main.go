package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/config"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pg, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	svc := game.NewService(pg, logger)

	if cfg.RunOnce {
		advanced, err := svc.ForceAdvanceOverdue(ctx)
		if err != nil {
			logger.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed", "advanced", advanced)
		return
	}

	ticker := time.NewTicker(cfg.SweepEvery)
	defer ticker.Stop()

	logger.Info("worker started", "sweep_every", cfg.SweepEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			advanced, err := svc.ForceAdvanceOverdue(ctx)
			if err != nil {
				logger.Error("deadline sweep failed", "err", err)
				continue
			}
			if advanced > 0 {
				logger.Info("deadline sweep complete", "advanced", advanced)
			}
		}
	}
}
