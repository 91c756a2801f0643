package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/starlink-stock/stockpro/internal/app"
	jobmetrics "github.com/starlink-stock/stockpro/internal/jobs"
	"github.com/starlink-stock/stockpro/internal/persist"
	"github.com/starlink-stock/stockpro/internal/platform/cache"
	"github.com/starlink-stock/stockpro/internal/platform/db"
	"github.com/starlink-stock/stockpro/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var slots persist.SlotStore
	if cfg.PersistBackend == "postgres" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		slots = persist.NewPostgresSlotStore(pool, cfg.StatePrefix)
	} else {
		slots = persist.NewRedisSlotStore(redisClient, cfg.StatePrefix)
	}
	stateStore := persist.NewStateStore(slots, logger)

	mailer := jobs.NewSMTPMailer(fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort), cfg.SMTPFrom)
	processor := jobs.NewProcessor(stateStore, mailer, cfg.AlertRecipient, logger).
		WithMetrics(jobmetrics.NewMetrics(nil))

	lowStockTask, err := jobs.NewLowStockScanTask(time.Now())
	if err != nil {
		logger.Error("build low stock task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewStockIntegrityTask(time.Now())
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Processor: processor,
		Cron: []jobs.CronRegistration{
			{Spec: "0 8 * * *", Task: lowStockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
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
