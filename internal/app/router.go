package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/starlink-stock/stockpro/internal/auth"
	"github.com/starlink-stock/stockpro/internal/dashboard"
	"github.com/starlink-stock/stockpro/internal/inventory"
	"github.com/starlink-stock/stockpro/internal/observability"
	"github.com/starlink-stock/stockpro/internal/sales"
	"github.com/starlink-stock/stockpro/internal/shared"
	"github.com/starlink-stock/stockpro/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
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

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireUser(params.Logger))
		r.Route("/products", params.InventoryHandler.MountProductRoutes)
		r.Route("/stock-logs", params.InventoryHandler.MountStockLogRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
