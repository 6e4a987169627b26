package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rates-engine/internal/bootstrap"
	"rates-engine/internal/config"
	"rates-engine/internal/infrastructure/logx"
	"rates-engine/internal/infrastructure/scheduler"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Cleanup()

	sched := scheduler.New(app.Service, cfg.RefreshBases, cfg.RefreshInterval, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("start scheduler", zap.Error(err))
	}
	logger.Info("refresher started",
		zap.Strings("bases", cfg.RefreshBases),
		zap.Duration("interval", cfg.RefreshInterval),
	)

	<-ctx.Done()
	logger.Info("refresher stopped")
}
