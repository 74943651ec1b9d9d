package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/api"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/config"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var repo game.Repository
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		repo = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		repo = store.NewMemory()
	}

	gameSvc := game.NewService(repo, logger)
	if cfg.LevelFile != "" {
		levels, err := config.LoadLevels(cfg.LevelFile)
		if err != nil {
			logger.Error("load level file failed", "err", err)
			os.Exit(1)
		}
		gameSvc.RegisterLevels(levels)
		logger.Info("custom levels loaded", "file", cfg.LevelFile, "count", len(levels))
	}

	server := api.New(cfg, logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("agencysim api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
