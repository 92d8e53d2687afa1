package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/dark-chess/internal/config"
	"github.com/park285/dark-chess/internal/darkbuilder"
	"github.com/park285/dark-chess/internal/obslog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := darkbuilder.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("init_error", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() { errCh <- deps.HTTP.ListenAndServe(cfg.HTTPAddr) }()
	go func() { errCh <- deps.WS.Listen(cfg.WSAddr) }()
	logger.Info("darkchess_started",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("ws_addr", cfg.WSAddr),
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
	)

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("darkchess_shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server_error", zap.Error(err))
		}
	}

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := deps.HTTP.Close(sctx); err != nil {
		logger.Warn("http_close_error", zap.Error(err))
	}
	if err := deps.WS.Close(sctx); err != nil {
		logger.Warn("ws_close_error", zap.Error(err))
	}
	if err := deps.Close(); err != nil {
		logger.Warn("deps_close_error", zap.Error(err))
	}
}
