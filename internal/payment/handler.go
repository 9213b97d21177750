package payment

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hisaab-pk/hisaab/internal/platform/httpx"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Handler exposes checkout and gateway callback endpoints.
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

// MountRoutes registers authenticated checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/subscription", h.initiateSubscription)
	r.Post("/invoice/{id}", h.initiateInvoice)
}

// MountCallbackRoutes registers the gateway-facing callback routes. These are
// public: the gateway authenticates itself through the secure hash.
func (h *Handler) MountCallbackRoutes(r chi.Router) {
	r.Get("/jazzcash/return", h.returnCallback)
	r.Post("/jazzcash/return", h.returnCallback)
	r.Post("/jazzcash/ipn", h.ipnCallback)
}

type initiateSubscriptionRequest struct {
	PlanCode string `json:"plan_code" validate:"required"`
}

func (h *Handler) initiateSubscription(w http.ResponseWriter, r *http.Request) {
	var req initiateSubscriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	fields, err := h.service.InitiateSubscription(r.Context(), shared.CompanyFromContext(r.Context()), req.PlanCode)
	if err != nil {
		h.logger.Error("initiate subscription payment", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Checkout Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"gateway_fields": fields})
}

func (h *Handler) initiateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	fields, err := h.service.InitiateInvoicePayment(r.Context(), shared.CompanyFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
			return
		}
		h.logger.Error("initiate invoice payment", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"gateway_fields": fields})
}

// returnCallback handles the browser redirect from the gateway. The response
// indicates success or failure based on the gateway's verdict.
func (h *Handler) returnCallback(w http.ResponseWriter, r *http.Request) {
	fields, err := callbackFields(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Callback", err.Error())
		return
	}

	outcome, err := h.service.HandleCallback(r.Context(), fields)
	if err != nil {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"status":  "failed",
			"message": "payment could not be verified",
		})
		return
	}
	status := "failed"
	if outcome.Succeeded {
		status = "success"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"txn_ref": outcome.TxnRef,
		"message": outcome.Message,
	})
}

// ipnCallback handles the server-to-server notification.
func (h *Handler) ipnCallback(w http.ResponseWriter, r *http.Request) {
	fields, err := callbackFields(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Callback", err.Error())
		return
	}

	outcome, err := h.service.HandleCallback(r.Context(), fields)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Signature Mismatch", "callback signature verification failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"acknowledged": true,
		"txn_ref":      outcome.TxnRef,
		"succeeded":    outcome.Succeeded,
	})
}

// callbackFields flattens query or form parameters into the field map the
// signature is computed over. First value wins for repeated keys.
func callbackFields(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields, nil
}
