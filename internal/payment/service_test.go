package payment

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisaab-pk/hisaab/internal/invoice"
	"github.com/hisaab-pk/hisaab/internal/jazzcash"
	"github.com/hisaab-pk/hisaab/internal/shared"
	"github.com/hisaab-pk/hisaab/internal/subscription"
)

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type memoryPaymentRepo struct {
	payments      map[string]*Payment
	subscriptions map[int64]*subscription.Subscription
	completeErr   error
	nextID        int64
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{
		payments:      make(map[string]*Payment),
		subscriptions: make(map[int64]*subscription.Subscription),
	}
}

func (r *memoryPaymentRepo) CreatePayment(ctx context.Context, p Payment) (*Payment, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	r.payments[p.TxnRef] = &p
	return &p, nil
}

func (r *memoryPaymentRepo) GetByTxnRef(ctx context.Context, txnRef string) (*Payment, error) {
	p, ok := r.payments[txnRef]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryPaymentRepo) Complete(ctx context.Context, txnRef string, result GatewayResult) error {
	if r.completeErr != nil {
		return r.completeErr
	}
	p, ok := r.payments[txnRef]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusCompleted
	p.ResponseCode = result.ResponseCode
	p.ResponseMessage = result.ResponseMessage
	p.RetrievalRef = result.RetrievalRef
	if p.SubscriptionID != nil {
		if sub, ok := r.subscriptions[*p.SubscriptionID]; ok {
			sub.Status = subscription.StatusActive
			expires := time.Now().AddDate(0, 0, sub.DurationDays)
			sub.ExpiresAt = &expires
		}
	}
	return nil
}

func (r *memoryPaymentRepo) MarkFailed(ctx context.Context, txnRef string, result GatewayResult) error {
	p, ok := r.payments[txnRef]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusFailed
	p.ResponseCode = result.ResponseCode
	p.ResponseMessage = result.ResponseMessage
	return nil
}

type fakeSubscriptionStarter struct {
	repo   *memoryPaymentRepo
	nextID int64
}

func (f *fakeSubscriptionStarter) StartPending(ctx context.Context, companyID int64, planCode string) (*subscription.Subscription, error) {
	plan, ok := subscription.PlanByCode(planCode)
	if !ok {
		return nil, errors.New("unknown plan")
	}
	f.nextID++
	sub := &subscription.Subscription{
		ID:           f.nextID,
		CompanyID:    companyID,
		PlanCode:     plan.Code,
		Status:       subscription.StatusPending,
		DurationDays: plan.DurationDays,
	}
	f.repo.subscriptions[sub.ID] = sub
	return sub, nil
}

type fakeInvoiceSource struct {
	invoice *invoice.Invoice
}

func (f fakeInvoiceSource) Get(ctx context.Context, companyID, id int64) (*invoice.Invoice, []invoice.Item, error) {
	if f.invoice == nil {
		return nil, nil, shared.ErrNotFound
	}
	return f.invoice, nil, nil
}

const testSalt = "salt"

func newTestService(repo *memoryPaymentRepo, inv *invoice.Invoice) *Service {
	gateway := jazzcash.Config{
		MerchantID: "MC10001",
		Password:   "pw",
		Salt:       testSalt,
		ReturnURL:  "https://app.hisaab.pk/payments/jazzcash/return",
	}
	return NewService(repo, &fakeSubscriptionStarter{repo: repo}, fakeInvoiceSource{invoice: inv}, gateway, slog.New(slog.DiscardHandler), nil)
}

func signedCallback(txnRef, code string) map[string]string {
	fields := map[string]string{
		jazzcash.FieldAmount:       "100000",
		jazzcash.FieldTxnRef:       txnRef,
		jazzcash.FieldResponseCode: code,
		jazzcash.FieldResponseMsg:  "Thank you for using JazzCash",
	}
	fields[jazzcash.SignatureField] = jazzcash.Sign(fields, testSalt)
	return fields
}

// ============================================================================
// TESTS
// ============================================================================

func TestInitiateSubscriptionCreatesSignedFields(t *testing.T) {
	repo := newMemoryPaymentRepo()
	svc := newTestService(repo, nil)

	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)
	assert.True(t, jazzcash.VerifySignature(fields, testSalt))
	assert.Equal(t, "100000", fields[jazzcash.FieldAmount])

	p, err := repo.GetByTxnRef(context.Background(), fields[jazzcash.FieldTxnRef])
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	require.NotNil(t, p.SubscriptionID)
}

func TestInitiateInvoicePaymentConvertsToPaisa(t *testing.T) {
	repo := newMemoryPaymentRepo()
	inv := &invoice.Invoice{ID: 5, CompanyID: 1, Number: "INV-2026-0001", Total: decimal.RequireFromString("1180.00")}
	svc := newTestService(repo, inv)

	fields, err := svc.InitiateInvoicePayment(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "118000", fields[jazzcash.FieldAmount])
}

func TestHandleCallbackVerifiedSuccessActivatesSubscription(t *testing.T) {
	repo := newMemoryPaymentRepo()
	svc := newTestService(repo, nil)

	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)
	txnRef := fields[jazzcash.FieldTxnRef]

	outcome, err := svc.HandleCallback(context.Background(), signedCallback(txnRef, "000"))
	require.NoError(t, err)
	require.True(t, outcome.Succeeded)
	assert.True(t, outcome.Subscription)
	assert.Equal(t, int64(100000), outcome.Amount)

	p := repo.payments[txnRef]
	assert.Equal(t, StatusCompleted, p.Status)
	sub := repo.subscriptions[*p.SubscriptionID]
	assert.Equal(t, subscription.StatusActive, sub.Status)
	require.NotNil(t, sub.ExpiresAt)
}

func TestHandleCallbackTamperedSignatureChangesNothing(t *testing.T) {
	repo := newMemoryPaymentRepo()
	svc := newTestService(repo, nil)

	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)
	txnRef := fields[jazzcash.FieldTxnRef]

	callback := signedCallback(txnRef, "000")
	sig := callback[jazzcash.SignatureField]
	if sig[0] == 'A' {
		callback[jazzcash.SignatureField] = "B" + sig[1:]
	} else {
		callback[jazzcash.SignatureField] = "A" + sig[1:]
	}

	_, err = svc.HandleCallback(context.Background(), callback)
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Equal(t, StatusPending, repo.payments[txnRef].Status, "no state change on mismatch")
}

func TestHandleCallbackVerifiedFailureMarksFailed(t *testing.T) {
	repo := newMemoryPaymentRepo()
	svc := newTestService(repo, nil)

	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)
	txnRef := fields[jazzcash.FieldTxnRef]

	callback := map[string]string{
		jazzcash.FieldTxnRef:       txnRef,
		jazzcash.FieldResponseCode: "157",
		jazzcash.FieldResponseMsg:  "Transaction declined",
	}
	callback[jazzcash.SignatureField] = jazzcash.Sign(callback, testSalt)

	outcome, err := svc.HandleCallback(context.Background(), callback)
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, StatusFailed, repo.payments[txnRef].Status)
	assert.Equal(t, "Transaction declined", repo.payments[txnRef].ResponseMessage)
}

func TestHandleCallbackStateUpdateFailureStillAnswersGatewayVerdict(t *testing.T) {
	repo := newMemoryPaymentRepo()
	repo.completeErr = errors.New("connection reset")
	svc := newTestService(repo, nil)

	fields, err := svc.InitiateSubscription(context.Background(), 1, "starter")
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(context.Background(), signedCallback(fields[jazzcash.FieldTxnRef], "000"))
	require.NoError(t, err, "bookkeeping failure must not override the gateway verdict")
	assert.True(t, outcome.Succeeded)
}
