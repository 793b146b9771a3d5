package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bizdir/bizdir/internal/app"
	jobmetrics "github.com/bizdir/bizdir/internal/jobs"
	"github.com/bizdir/bizdir/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open document store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	notifications := jobs.NewNotificationJob(store, logger, jobmetrics.NewMetrics(nil))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.QueueRedis(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    notifications.Handlers(),
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
