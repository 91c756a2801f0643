// Package dashboard assembles the combined analytics view and its CSV export.
package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/starlink-stock/stockpro/internal/metrics"
	"github.com/starlink-stock/stockpro/internal/platform/httpx"
	"github.com/starlink-stock/stockpro/internal/store"
)

// Handler wires HTTP endpoints for the dashboard module.
type Handler struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewHandler constructs dashboard handler.
func NewHandler(logger *slog.Logger, st *store.Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: st, now: time.Now}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOverview)
	r.Get("/export.csv", h.handleExportCSV)
}

type overviewResponse struct {
	Summary    metrics.Summary         `json:"summary"`
	Health     []metrics.ProductHealth `json:"health"`
	TopSellers []metrics.TopSeller     `json:"topSellers"`
	LowStock   []store.Product         `json:"lowStock"`
}

// handleOverview computes every dashboard section from a single snapshot so
// the figures are mutually consistent.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()

	var resp overviewResponse
	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Summary = metrics.Summarize(snap)
		return nil
	})
	g.Go(func() error {
		resp.Health = metrics.Health(snap)
		return nil
	})
	g.Go(func() error {
		resp.TopSellers = metrics.TopSellers(snap, metrics.TopSellersLimit)
		return nil
	})
	g.Go(func() error {
		resp.LowStock = metrics.LowStock(snap)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("assemble dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	generatedAt := h.now()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "dashboard-"+generatedAt.Format("2006-01-02")+".csv"))
	if err := writeOverviewCSV(w, snap, generatedAt); err != nil {
		h.logger.Error("export dashboard csv", slog.Any("error", err))
	}
}
