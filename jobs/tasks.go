// Package jobs contains Asynq task definitions and handlers for background
// housekeeping.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup purges stale idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
	// TaskSubscriptionExpire marks overdue subscriptions as expired.
	TaskSubscriptionExpire = "subscription:expire"
	// TaskFBRSync rechecks a posted invoice against the FBR API.
	TaskFBRSync = "invoice:fbr-sync"
)

// FBRSyncPayload identifies the invoice to recheck.
type FBRSyncPayload struct {
	CompanyID int64 `json:"company_id"`
	InvoiceID int64 `json:"invoice_id"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NewSubscriptionExpireTask constructs the expiry sweep task.
func NewSubscriptionExpireTask() *asynq.Task {
	return asynq.NewTask(TaskSubscriptionExpire, nil)
}

// NewFBRSyncTask constructs a recheck task for one invoice.
func NewFBRSyncTask(payload FBRSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFBRSync, data), nil
}
