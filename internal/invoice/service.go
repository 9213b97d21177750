package invoice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hisaab-pk/hisaab/internal/company"
	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/observability"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// RepositoryPort defines data access for invoices.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput, subtotal, taxTotal, total decimal.Decimal) (*Invoice, error)
	GetInvoice(ctx context.Context, companyID, id int64) (*Invoice, error)
	ListInvoices(ctx context.Context, companyID int64) ([]Invoice, error)
	ListItems(ctx context.Context, invoiceID int64) ([]Item, error)
	DeleteInvoice(ctx context.Context, companyID, id int64) error
	RecordSubmission(ctx context.Context, id int64, status Status, fbrNumber, rawResponse string) error
}

// CompanyDirectory resolves tenant settings for payload building.
type CompanyDirectory interface {
	Get(ctx context.Context, id int64) (*company.Company, error)
}

// FiscalClient abstracts the FBR API client.
type FiscalClient interface {
	Validate(ctx context.Context, payload *fbr.InvoicePayload, token string) (*fbr.Response, error)
	Post(ctx context.Context, payload *fbr.InvoicePayload, token string) (*fbr.Response, error)
}

// IdempotencyStore guards against duplicate posting of the same payload.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// RecheckQueue schedules background rechecks of posted invoices.
type RecheckQueue interface {
	EnqueueInvoiceRecheck(ctx context.Context, companyID, invoiceID int64) error
}

// ErrAlreadyPosted indicates the identical payload was posted before.
var ErrAlreadyPosted = errors.New("invoice: identical payload already posted to fbr")

// ErrNotDraft indicates a mutation attempted on a submitted invoice.
var ErrNotDraft = errors.New("invoice: only draft invoices can be modified")

// ErrNotPosted indicates a status recheck on an invoice that was never posted.
var ErrNotPosted = errors.New("invoice: invoice has not been posted to fbr")

// ErrTokenMissing indicates the tenant has not configured an FBR token.
var ErrTokenMissing = errors.New("invoice: fbr token not configured for company")

const idempotencyModule = "fbr-post"

// Service handles invoice business logic.
type Service struct {
	repo        RepositoryPort
	companies   CompanyDirectory
	fiscal      FiscalClient
	idempotency IdempotencyStore
	logger      *slog.Logger
	metrics     *observability.Metrics
	recheck     RecheckQueue
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, companies CompanyDirectory, fiscal FiscalClient, idempotency IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		companies:   companies,
		fiscal:      fiscal,
		idempotency: idempotency,
		logger:      logger,
	}
}

// WithMetrics attaches a metrics sink; a nil sink disables counting.
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// WithRecheckQueue attaches the background queue that rechecks an invoice
// after posting; nil disables scheduling.
func (s *Service) WithRecheckQueue(q RecheckQueue) *Service {
	s.recheck = q
	return s
}

// Create stores a new draft invoice, computing line values and totals with
// the same rounding the fiscal payload will use.
func (s *Service) Create(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if input.CompanyID == 0 {
		return nil, errors.New("company ID required")
	}
	if input.InvoiceDate.IsZero() {
		return nil, &fbr.MissingFieldError{Field: "invoiceDate"}
	}
	if len(input.Items) == 0 {
		return nil, &fbr.MissingFieldError{Field: "items"}
	}
	if input.InvoiceType == "" {
		input.InvoiceType = "Sale Invoice"
	}
	if input.BuyerScheme == "" {
		input.BuyerScheme = fbr.SchemeNTN
	}
	if input.BuyerRegistrationType == "" {
		input.BuyerRegistrationType = "Unregistered"
	}
	// Reject a bad buyer identifier at creation instead of at submission.
	if _, err := fbr.NormalizeIdentifier(input.BuyerIdentifier, input.BuyerScheme, fbr.PartyBuyer); err != nil {
		return nil, err
	}

	subtotal, taxTotal := decimal.Zero, decimal.Zero
	for _, line := range input.Items {
		value := fbr.Round2(line.Quantity.Mul(line.UnitPrice))
		subtotal = subtotal.Add(value)
		taxTotal = taxTotal.Add(fbr.TaxAmount(value, line.TaxRate))
		taxTotal = taxTotal.Add(fbr.TaxAmount(value, line.FurtherTaxRate))
	}
	total := subtotal.Add(taxTotal)

	return s.repo.CreateInvoice(ctx, input, subtotal, taxTotal, total)
}

// Get returns one invoice with its items.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*Invoice, []Item, error) {
	inv, err := s.repo.GetInvoice(ctx, companyID, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

// List returns all invoices for the tenant.
func (s *Service) List(ctx context.Context, companyID int64) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, companyID)
}

// Delete removes a draft invoice.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	inv, err := s.repo.GetInvoice(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.repo.DeleteInvoice(ctx, companyID, id)
}

// SubmitValidate builds the fiscal payload and sends it to the validation
// endpoint. The verdict is persisted on the invoice row either way.
func (s *Service) SubmitValidate(ctx context.Context, companyID, id int64) (*fbr.Response, error) {
	payload, token, err := s.preparePayload(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.fiscal.Validate(ctx, payload, token)
	if err != nil {
		s.metrics.IncFBRSubmission("validate", "error")
		s.recordFailure(ctx, id, err)
		return resp, err
	}
	s.metrics.IncFBRSubmission("validate", "ok")
	raw, _ := json.Marshal(resp)
	if recErr := s.repo.RecordSubmission(ctx, id, StatusValidated, "", string(raw)); recErr != nil {
		s.logger.Error("record validation result", slog.Int64("invoice_id", id), slog.Any("error", recErr))
	}
	return resp, nil
}

// SubmitPost posts the invoice to FBR. A content-addressed idempotency key
// prevents the same payload from being posted twice on a user retry.
func (s *Service) SubmitPost(ctx context.Context, companyID, id int64) (*fbr.Response, error) {
	payload, token, err := s.preparePayload(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	key, err := postKey(id, payload)
	if err != nil {
		return nil, err
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			return nil, ErrAlreadyPosted
		}
		return nil, err
	}

	resp, err := s.fiscal.Post(ctx, payload, token)
	if err != nil {
		s.metrics.IncFBRSubmission("post", "error")
		// Release the key so a corrected retry is not locked out.
		if delErr := s.idempotency.Delete(ctx, key); delErr != nil {
			s.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", delErr))
		}
		s.recordFailure(ctx, id, err)
		return resp, err
	}
	s.metrics.IncFBRSubmission("post", "ok")

	raw, _ := json.Marshal(resp)
	fbrNumber := resp.AssignedInvoiceNumber()
	if recErr := s.repo.RecordSubmission(ctx, id, StatusPosted, fbrNumber, string(raw)); recErr != nil {
		s.logger.Error("record posting result", slog.Int64("invoice_id", id), slog.Any("error", recErr))
	}
	if s.recheck != nil {
		// Best effort: the posting already succeeded, a missed recheck only
		// delays detection of an FBR-side discrepancy.
		if qErr := s.recheck.EnqueueInvoiceRecheck(ctx, companyID, id); qErr != nil {
			s.logger.Warn("enqueue fbr recheck", slog.Int64("invoice_id", id), slog.Any("error", qErr))
		}
	}
	return resp, nil
}

// Recheck replays an already posted invoice against the validation endpoint
// without touching stored state. Used by the background sync job to detect
// invoices FBR no longer recognises.
func (s *Service) Recheck(ctx context.Context, companyID, id int64) (*fbr.Response, error) {
	inv, err := s.repo.GetInvoice(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusPosted {
		return nil, ErrNotPosted
	}
	payload, token, err := s.preparePayload(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return s.fiscal.Validate(ctx, payload, token)
}

func (s *Service) preparePayload(ctx context.Context, companyID, id int64) (*fbr.InvoicePayload, string, error) {
	inv, err := s.repo.GetInvoice(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, "", err
	}
	comp, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if comp.FBRToken == "" {
		return nil, "", ErrTokenMissing
	}

	scenario := inv.ScenarioID
	if scenario == "" {
		scenario = comp.DefaultScenarioID
	}

	in := fbr.InvoiceInput{
		Type:       inv.InvoiceType,
		Date:       inv.InvoiceDate,
		RefNo:      inv.RefNo,
		ScenarioID: scenario,
		Seller: fbr.PartyInfo{
			Identifier:   comp.Identifier,
			Scheme:       comp.Scheme,
			BusinessName: comp.Name,
			Province:     comp.Province,
			Address:      comp.Address,
		},
		Buyer: fbr.PartyInfo{
			Identifier:   inv.BuyerIdentifier,
			Scheme:       inv.BuyerScheme,
			BusinessName: inv.BuyerName,
			Province:     inv.BuyerProvince,
			Address:      inv.BuyerAddress,
		},
		BuyerRegistrationType: inv.BuyerRegistrationType,
		Items:                 make([]fbr.LineInput, 0, len(items)),
	}
	for _, item := range items {
		in.Items = append(in.Items, fbr.LineInput{
			HSCode:         item.HSCode,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Value:          item.Value,
			TaxRate:        item.TaxRate,
			FurtherTaxRate: item.FurtherTaxRate,
			UOM:            item.UOM,
			SaleType:       item.SaleType,
			Discount:       item.Discount,
		})
	}

	payload, err := fbr.BuildPayload(in)
	if err != nil {
		return nil, "", err
	}
	return payload, comp.FBRToken, nil
}

func (s *Service) recordFailure(ctx context.Context, id int64, cause error) {
	raw := cause.Error()
	var apiErr *fbr.APIError
	if errors.As(cause, &apiErr) && apiErr.Body != "" {
		raw = apiErr.Body
	}
	if err := s.repo.RecordSubmission(ctx, id, StatusFailed, "", raw); err != nil {
		s.logger.Error("record submission failure", slog.Int64("invoice_id", id), slog.Any("error", err))
	}
}

func postKey(id int64, payload *fbr.InvoicePayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%d:%s", idempotencyModule, id, hex.EncodeToString(sum[:])), nil
}
