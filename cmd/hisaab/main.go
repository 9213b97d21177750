package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hisaab-pk/hisaab/internal/app"
	"github.com/hisaab-pk/hisaab/internal/auth"
	"github.com/hisaab-pk/hisaab/internal/company"
	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/invoice"
	"github.com/hisaab-pk/hisaab/internal/jazzcash"
	"github.com/hisaab-pk/hisaab/internal/observability"
	"github.com/hisaab-pk/hisaab/internal/payment"
	"github.com/hisaab-pk/hisaab/internal/platform/db"
	"github.com/hisaab-pk/hisaab/internal/shared"
	"github.com/hisaab-pk/hisaab/internal/subscription"
	"github.com/hisaab-pk/hisaab/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "hisaab_session", cfg.SessionTTL, cfg.IsProduction())
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService)

	companyRepo := company.NewRepository(pool)
	companyService := company.NewService(companyRepo)
	companyHandler := company.NewHandler(logger, companyService)

	fiscalClient := fbr.NewClient(cfg.FBRBaseURL, cfg.FBRTimeout, logger)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	invoiceRepo := invoice.NewRepository(pool)
	invoiceService := invoice.NewService(invoiceRepo, companyService, fiscalClient, idempotencyStore, logger).
		WithMetrics(metrics).
		WithRecheckQueue(jobsClient)
	invoiceHandler := invoice.NewHandler(logger, invoiceService)

	subscriptionRepo := subscription.NewRepository(pool)
	subscriptionService := subscription.NewService(subscriptionRepo)
	subscriptionHandler := subscription.NewHandler(logger, subscriptionService)

	gateway := jazzcash.Config{
		MerchantID: cfg.JazzCashMerchantID,
		Password:   cfg.JazzCashPassword,
		Salt:       cfg.JazzCashSalt,
		ReturnURL:  cfg.JazzCashReturnURL,
	}
	paymentRepo := payment.NewRepository(pool)
	paymentService := payment.NewService(paymentRepo, subscriptionService, invoiceService, gateway, logger, metrics)
	paymentHandler := payment.NewHandler(logger, paymentService)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		AuthHandler:         authHandler,
		CompanyHandler:      companyHandler,
		InvoiceHandler:      invoiceHandler,
		PaymentHandler:      paymentHandler,
		SubscriptionHandler: subscriptionHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
