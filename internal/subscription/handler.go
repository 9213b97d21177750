package subscription

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hisaab-pk/hisaab/internal/platform/httpx"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Handler exposes the plan catalog and the tenant's current subscription.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers subscription routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/plans", h.listPlans)
	r.Get("/current", h.current)
}

type subscriptionResponse struct {
	ID        int64      `json:"id"`
	PlanCode  string     `json:"plan_code"`
	Status    Status     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"plans": h.service.Plans()})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Current(r.Context(), shared.CompanyFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no subscription for this company")
			return
		}
		h.logger.Error("load current subscription", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, subscriptionResponse{
		ID:        sub.ID,
		PlanCode:  sub.PlanCode,
		Status:    sub.Status,
		ExpiresAt: sub.ExpiresAt,
	})
}
