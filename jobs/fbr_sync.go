package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/hisaab-pk/hisaab/internal/invoice"
)

// FBRSyncJob rechecks a posted invoice against the FBR validation endpoint.
// Single-attempt: the task is enqueued with MaxRetry(0) and a negative
// verdict is logged for manual follow-up, never retried.
type FBRSyncJob struct {
	invoices *invoice.Service
	logger   *slog.Logger
}

// NewFBRSyncJob constructs the job.
func NewFBRSyncJob(invoices *invoice.Service, logger *slog.Logger) *FBRSyncJob {
	return &FBRSyncJob{invoices: invoices, logger: logger}
}

// Handle processes TaskFBRSync tasks.
func (j *FBRSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload FBRSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	resp, err := j.invoices.Recheck(ctx, payload.CompanyID, payload.InvoiceID)
	if err != nil {
		j.logger.Error("fbr recheck",
			slog.Int64("invoice_id", payload.InvoiceID),
			slog.Any("error", err))
		return asynq.SkipRetry
	}
	if !resp.Accepted() {
		status, detail := "", ""
		if resp.ValidationResponse != nil {
			status = resp.ValidationResponse.Status
			detail = resp.ValidationResponse.Error
		}
		j.logger.Warn("fbr no longer accepts posted invoice",
			slog.Int64("invoice_id", payload.InvoiceID),
			slog.String("status", status),
			slog.String("detail", detail))
		return nil
	}
	j.logger.Info("fbr recheck ok", slog.Int64("invoice_id", payload.InvoiceID))
	return nil
}
