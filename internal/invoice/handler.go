package invoice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/platform/httpx"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/validate", h.submitValidate)
	r.Post("/{id}/post", h.submitPost)
}

type itemRequest struct {
	HSCode         string          `json:"hs_code" validate:"max=20"`
	Description    string          `json:"description" validate:"required,max=500"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"required"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	FurtherTaxRate decimal.Decimal `json:"further_tax_rate"`
	Discount       decimal.Decimal `json:"discount"`
	UOM            string          `json:"uom" validate:"max=60"`
	SaleType       string          `json:"sale_type" validate:"max=100"`
}

type createInvoiceRequest struct {
	Number                string        `json:"number" validate:"required,max=50"`
	InvoiceType           string        `json:"invoice_type" validate:"omitempty,oneof='Sale Invoice' 'Debit Note'"`
	InvoiceDate           string        `json:"invoice_date" validate:"required"`
	RefNo                 string        `json:"ref_no" validate:"max=50"`
	ScenarioID            string        `json:"scenario_id" validate:"max=10"`
	BuyerName             string        `json:"buyer_name" validate:"required,max=200"`
	BuyerIdentifier       string        `json:"buyer_identifier" validate:"required,max=20"`
	BuyerScheme           string        `json:"buyer_scheme" validate:"omitempty,oneof=ntn cnic"`
	BuyerProvince         string        `json:"buyer_province" validate:"max=100"`
	BuyerAddress          string        `json:"buyer_address" validate:"max=500"`
	BuyerRegistrationType string        `json:"buyer_registration_type" validate:"omitempty,oneof=Registered Unregistered"`
	Items                 []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type invoiceResponse struct {
	ID               int64  `json:"id"`
	Number           string `json:"number"`
	InvoiceType      string `json:"invoice_type"`
	InvoiceDate      string `json:"invoice_date"`
	BuyerName        string `json:"buyer_name"`
	BuyerIdentifier  string `json:"buyer_identifier"`
	Subtotal         string `json:"subtotal"`
	TaxTotal         string `json:"tax_total"`
	Total            string `json:"total"`
	Status           string `json:"status"`
	FBRInvoiceNumber string `json:"fbr_invoice_number,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func toInvoiceResponse(inv *Invoice) invoiceResponse {
	return invoiceResponse{
		ID:               inv.ID,
		Number:           inv.Number,
		InvoiceType:      inv.InvoiceType,
		InvoiceDate:      inv.InvoiceDate.Format("2006-01-02"),
		BuyerName:        inv.BuyerName,
		BuyerIdentifier:  inv.BuyerIdentifier,
		Subtotal:         inv.Subtotal.StringFixed(2),
		TaxTotal:         inv.TaxTotal.StringFixed(2),
		Total:            inv.Total.StringFixed(2),
		Status:           string(inv.Status),
		FBRInvoiceNumber: inv.FBRInvoiceNumber,
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoice_date must be YYYY-MM-DD")
		return
	}

	input := CreateInvoiceInput{
		CompanyID:             shared.CompanyFromContext(r.Context()),
		Number:                req.Number,
		InvoiceType:           req.InvoiceType,
		InvoiceDate:           invoiceDate,
		RefNo:                 req.RefNo,
		ScenarioID:            req.ScenarioID,
		BuyerName:             req.BuyerName,
		BuyerIdentifier:       req.BuyerIdentifier,
		BuyerScheme:           fbr.IdentifierScheme(req.BuyerScheme),
		BuyerProvince:         req.BuyerProvince,
		BuyerAddress:          req.BuyerAddress,
		BuyerRegistrationType: req.BuyerRegistrationType,
		CreatedBy:             shared.UserFromContext(r.Context()),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ItemInput{
			HSCode:         item.HSCode,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TaxRate:        item.TaxRate,
			FurtherTaxRate: item.FurtherTaxRate,
			Discount:       item.Discount,
			UOM:            item.UOM,
			SaleType:       item.SaleType,
		})
	}

	inv, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context(), shared.CompanyFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": out})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, items, err := h.service.Get(r.Context(), shared.CompanyFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	type itemResponse struct {
		HSCode      string `json:"hs_code"`
		Description string `json:"description"`
		Quantity    string `json:"quantity"`
		UnitPrice   string `json:"unit_price"`
		Value       string `json:"value"`
		TaxRate     string `json:"tax_rate"`
		FurtherTax  string `json:"further_tax_rate"`
		UOM         string `json:"uom"`
	}
	outItems := make([]itemResponse, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, itemResponse{
			HSCode:      it.HSCode,
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Value:       it.Value.StringFixed(2),
			TaxRate:     it.TaxRate.String(),
			FurtherTax:  it.FurtherTaxRate.String(),
			UOM:         it.UOM,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice": toInvoiceResponse(inv),
		"items":   outItems,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	if err := h.service.Delete(r.Context(), shared.CompanyFromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitValidate(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.service.SubmitValidate)
}

func (h *Handler) submitPost(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.service.SubmitPost)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, companyID, id int64) (*fbr.Response, error)) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	resp, err := op(r.Context(), shared.CompanyFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"fbr_invoice_number": resp.AssignedInvoiceNumber(),
		"response":           resp,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var idErr *fbr.InvalidIdentifierError
	var missing *fbr.MissingFieldError
	var apiErr *fbr.APIError
	switch {
	case errors.As(err, &idErr), errors.As(err, &missing):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrTokenMissing):
		httpx.Problem(w, http.StatusBadRequest, "FBR Not Configured", err.Error())
	case errors.Is(err, ErrAlreadyPosted), errors.Is(err, ErrNotDraft):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &apiErr):
		// The raw body is surfaced so the user sees exactly what FBR rejected.
		httpx.Problem(w, http.StatusBadGateway, "FBR Rejected Submission", apiErr.Body)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	default:
		h.logger.Error("invoice handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
