package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hisaab-pk/hisaab/internal/invoice"
	"github.com/hisaab-pk/hisaab/internal/jazzcash"
	"github.com/hisaab-pk/hisaab/internal/observability"
	"github.com/hisaab-pk/hisaab/internal/subscription"
)

// RepositoryPort defines data access for payments.
type RepositoryPort interface {
	CreatePayment(ctx context.Context, p Payment) (*Payment, error)
	GetByTxnRef(ctx context.Context, txnRef string) (*Payment, error)
	// Complete marks the payment completed and, when it is linked to a
	// subscription, activates that subscription in the same transaction.
	Complete(ctx context.Context, txnRef string, result GatewayResult) error
	MarkFailed(ctx context.Context, txnRef string, result GatewayResult) error
}

// SubscriptionStarter creates pending subscriptions for checkout.
type SubscriptionStarter interface {
	StartPending(ctx context.Context, companyID int64, planCode string) (*subscription.Subscription, error)
}

// InvoiceSource resolves invoice totals for one-off invoice payments.
type InvoiceSource interface {
	Get(ctx context.Context, companyID, id int64) (*invoice.Invoice, []invoice.Item, error)
}

// ErrSignatureMismatch indicates an inbound callback failed verification.
// The callback must not mutate any state.
var ErrSignatureMismatch = errors.New("payment: callback signature mismatch")

var paisaPerRupee = decimal.NewFromInt(100)

// Service handles payment business logic.
type Service struct {
	repo          RepositoryPort
	subscriptions SubscriptionStarter
	invoices      InvoiceSource
	gateway       jazzcash.Config
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, subscriptions SubscriptionStarter, invoices InvoiceSource, gateway jazzcash.Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		repo:          repo,
		subscriptions: subscriptions,
		invoices:      invoices,
		gateway:       gateway,
		logger:        logger,
		metrics:       metrics,
	}
}

// InitiateSubscription creates a pending subscription plus its payment row
// and returns the signed gateway form fields for checkout.
func (s *Service) InitiateSubscription(ctx context.Context, companyID int64, planCode string) (map[string]string, error) {
	sub, err := s.subscriptions.StartPending(ctx, companyID, planCode)
	if err != nil {
		return nil, err
	}
	plan, _ := subscription.PlanByCode(planCode)

	txnRef := jazzcash.NewTxnRef(true, time.Now())
	if _, err := s.repo.CreatePayment(ctx, Payment{
		CompanyID:      companyID,
		SubscriptionID: &sub.ID,
		TxnRef:         txnRef,
		AmountPaisa:    plan.PricePaisa,
		Status:         StatusPending,
	}); err != nil {
		return nil, err
	}

	return s.gateway.BuildTransactionFields(txnRef, plan.PricePaisa, "Hisaab subscription: "+plan.Name, time.Now()), nil
}

// InitiateInvoicePayment creates a payment row for a one-off invoice payment
// and returns the signed gateway form fields.
func (s *Service) InitiateInvoicePayment(ctx context.Context, companyID, invoiceID int64) (map[string]string, error) {
	inv, _, err := s.invoices.Get(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	amount := inv.Total.Mul(paisaPerRupee).IntPart()

	txnRef := jazzcash.NewTxnRef(false, time.Now())
	if _, err := s.repo.CreatePayment(ctx, Payment{
		CompanyID:   companyID,
		InvoiceID:   &inv.ID,
		TxnRef:      txnRef,
		AmountPaisa: amount,
		Status:      StatusPending,
	}); err != nil {
		return nil, err
	}

	return s.gateway.BuildTransactionFields(txnRef, amount, "Invoice "+inv.Number, time.Now()), nil
}

// HandleCallback verifies and applies a gateway callback. It returns
// ErrSignatureMismatch when the callback cannot be trusted; any database
// failure after successful verification is logged and the returned outcome
// still reflects what the gateway reported.
func (s *Service) HandleCallback(ctx context.Context, fields map[string]string) (jazzcash.Outcome, error) {
	if !jazzcash.VerifySignature(fields, s.gateway.Salt) {
		_, keys := jazzcash.CanonicalString(fields, s.gateway.Salt)
		s.logger.Warn("callback signature mismatch",
			slog.String("received", fields[jazzcash.SignatureField]),
			slog.String("calculated", jazzcash.Sign(fields, s.gateway.Salt)),
			slog.Any("participating_keys", keys))
		s.metrics.IncSignatureFailure()
		return jazzcash.Outcome{}, ErrSignatureMismatch
	}

	outcome := jazzcash.ClassifyOutcome(fields)
	result := GatewayResult{
		ResponseCode:    fields[jazzcash.FieldResponseCode],
		ResponseMessage: outcome.Message,
		RetrievalRef:    outcome.RetrievalRef,
	}

	if outcome.Succeeded {
		if err := s.repo.Complete(ctx, outcome.TxnRef, result); err != nil {
			// Best-effort bookkeeping: the gateway's verdict stands and the
			// row is reconciled manually.
			s.logger.Error("apply verified callback",
				slog.String("txn_ref", outcome.TxnRef),
				slog.Any("error", err))
		}
	} else {
		if err := s.repo.MarkFailed(ctx, outcome.TxnRef, result); err != nil {
			s.logger.Error("mark payment failed",
				slog.String("txn_ref", outcome.TxnRef),
				slog.Any("error", err))
		}
	}
	return outcome, nil
}
