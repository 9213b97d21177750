package payment

import "time"

// Status enumerates payment states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Payment is one gateway transaction, keyed by the gateway transaction
// reference. Amounts are in paisa (minor units).
type Payment struct {
	ID              int64
	CompanyID       int64
	InvoiceID       *int64
	SubscriptionID  *int64
	TxnRef          string
	AmountPaisa     int64
	Status          Status
	ResponseCode    string
	ResponseMessage string
	RetrievalRef    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GatewayResult carries the callback fields copied onto the payment row.
type GatewayResult struct {
	ResponseCode    string
	ResponseMessage string
	RetrievalRef    string
}
