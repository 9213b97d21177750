package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hisaab-pk/hisaab/internal/auth"
	"github.com/hisaab-pk/hisaab/internal/company"
	"github.com/hisaab-pk/hisaab/internal/invoice"
	"github.com/hisaab-pk/hisaab/internal/observability"
	"github.com/hisaab-pk/hisaab/internal/payment"
	"github.com/hisaab-pk/hisaab/internal/shared"
	"github.com/hisaab-pk/hisaab/internal/subscription"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	AuthHandler         *auth.Handler
	CompanyHandler      *company.Handler
	InvoiceHandler      *invoice.Handler
	PaymentHandler      *payment.Handler
	SubscriptionHandler *subscription.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router for the application.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Gateway callbacks authenticate through the secure hash, not a session.
	r.Route("/payments", params.PaymentHandler.MountCallbackRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		r.Route("/company", params.CompanyHandler.MountRoutes)
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
		r.Route("/checkout", params.PaymentHandler.MountRoutes)
		r.Route("/subscription", params.SubscriptionHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
