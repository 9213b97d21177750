package company

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/platform/httpx"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

// Handler exposes tenant settings endpoints.
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

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Put("/", h.update)
}

type companyResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Identifier        string `json:"identifier"`
	Scheme            string `json:"scheme"`
	Province          string `json:"province"`
	Address           string `json:"address"`
	DefaultScenarioID string `json:"default_scenario_id"`
	FBREnvironment    string `json:"fbr_environment"`
	FBRConfigured     bool   `json:"fbr_configured"`
	UpdatedAt         string `json:"updated_at"`
}

func toResponse(c *Company) companyResponse {
	return companyResponse{
		ID:                c.ID,
		Name:              c.Name,
		Identifier:        c.Identifier,
		Scheme:            string(c.Scheme),
		Province:          c.Province,
		Address:           c.Address,
		DefaultScenarioID: c.DefaultScenarioID,
		FBREnvironment:    c.FBREnvironment,
		FBRConfigured:     c.FBRToken != "",
		UpdatedAt:         c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	companyID := shared.CompanyFromContext(r.Context())
	c, err := h.service.Get(r.Context(), companyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

type updateSettingsRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	Identifier        string `json:"identifier" validate:"max=20"`
	Scheme            string `json:"scheme" validate:"omitempty,oneof=ntn cnic"`
	Province          string `json:"province" validate:"max=100"`
	Address           string `json:"address" validate:"max=500"`
	DefaultScenarioID string `json:"default_scenario_id" validate:"max=10"`
	FBRToken          string `json:"fbr_token" validate:"max=200"`
	FBREnvironment    string `json:"fbr_environment" validate:"omitempty,oneof=sandbox production"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	companyID := shared.CompanyFromContext(r.Context())
	c, err := h.service.UpdateSettings(r.Context(), companyID, UpdateSettingsInput{
		Name:              req.Name,
		Identifier:        req.Identifier,
		Scheme:            fbr.IdentifierScheme(req.Scheme),
		Province:          req.Province,
		Address:           req.Address,
		DefaultScenarioID: req.DefaultScenarioID,
		FBRToken:          req.FBRToken,
		FBREnvironment:    req.FBREnvironment,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var idErr *fbr.InvalidIdentifierError
	switch {
	case errors.As(err, &idErr):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Identifier", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "company not found")
	default:
		h.logger.Error("company handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
