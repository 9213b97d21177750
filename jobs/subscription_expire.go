package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/hisaab-pk/hisaab/internal/subscription"
)

// SubscriptionExpireJob sweeps active subscriptions past their expiry.
type SubscriptionExpireJob struct {
	service *subscription.Service
	logger  *slog.Logger
}

// NewSubscriptionExpireJob constructs the job.
func NewSubscriptionExpireJob(service *subscription.Service, logger *slog.Logger) *SubscriptionExpireJob {
	return &SubscriptionExpireJob{service: service, logger: logger}
}

// Handle processes TaskSubscriptionExpire tasks.
func (j *SubscriptionExpireJob) Handle(ctx context.Context, t *asynq.Task) error {
	expired, err := j.service.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("subscription expiry sweep", slog.Any("error", err))
		return err
	}
	if expired > 0 {
		j.logger.Info("subscriptions expired", slog.Int64("count", expired))
	}
	return nil
}
