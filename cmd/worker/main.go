package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/hisaab-pk/hisaab/internal/app"
	"github.com/hisaab-pk/hisaab/internal/company"
	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/invoice"
	"github.com/hisaab-pk/hisaab/internal/platform/db"
	"github.com/hisaab-pk/hisaab/internal/shared"
	"github.com/hisaab-pk/hisaab/internal/subscription"
	"github.com/hisaab-pk/hisaab/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	idempotencyStore := shared.NewIdempotencyStore(pool)

	companyRepo := company.NewRepository(pool)
	companyService := company.NewService(companyRepo)

	fiscalClient := fbr.NewClient(cfg.FBRBaseURL, cfg.FBRTimeout, logger)

	invoiceRepo := invoice.NewRepository(pool)
	invoiceService := invoice.NewService(invoiceRepo, companyService, fiscalClient, idempotencyStore, logger)

	subscriptionRepo := subscription.NewRepository(pool)
	subscriptionService := subscription.NewService(subscriptionRepo)

	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotencyStore, logger)
	expireJob := jobs.NewSubscriptionExpireJob(subscriptionService, logger)
	syncJob := jobs.NewFBRSyncJob(invoiceService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskSubscriptionExpire, Handler: expireJob.Handle},
			{Type: jobs.TaskFBRSync, Handler: syncJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 0 * * *", Task: jobs.NewSubscriptionExpireTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
