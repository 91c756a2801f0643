package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/starlink-stock/stockpro/internal/jobs"
	"github.com/starlink-stock/stockpro/internal/metrics"
	"github.com/starlink-stock/stockpro/internal/persist"
	"github.com/starlink-stock/stockpro/internal/store"
)

// Processor holds the dependencies shared by all task handlers. Tasks read
// the persisted state directly so the worker never needs the HTTP process.
type Processor struct {
	state      *persist.StateStore
	mailer     Mailer
	recipient  string
	logger     *slog.Logger
	jobMetrics *jobmetrics.Metrics
}

// NewProcessor constructs a Processor. jobMetrics may be nil, in which case
// runs are not instrumented.
func NewProcessor(state *persist.StateStore, mailer Mailer, recipient string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{state: state, mailer: mailer, recipient: recipient, logger: logger}
}

// WithMetrics attaches job run instrumentation. Must be called before the
// worker starts.
func (p *Processor) WithMetrics(m *jobmetrics.Metrics) *Processor {
	p.jobMetrics = m
	return p
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (p *Processor) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	tracker := p.jobMetrics.Track(TaskTypeSendEmail)
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	if p.mailer == nil {
		p.logger.Info("mail delivery skipped, no mailer configured",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return tracker.End(nil)
	}
	return tracker.End(p.mailer.Send(ctx, payload.To, payload.Subject, payload.Body))
}

// HandleLowStockScan alerts the operator when products fall below the
// replenishment threshold.
func (p *Processor) HandleLowStockScan(ctx context.Context, t *asynq.Task) error {
	tracker := p.jobMetrics.Track(TaskLowStockScan)
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	products := p.state.LoadProducts(ctx)
	low := metrics.LowStock(store.Snapshot{Products: products})
	p.logger.Info("low stock scan",
		slog.Int("products", len(products)),
		slog.Int("low", len(low)))
	if len(low) == 0 || p.recipient == "" || p.mailer == nil {
		return tracker.End(nil)
	}
	return tracker.End(p.mailer.Send(ctx, p.recipient, "Alerta de estoque baixo", lowStockBody(low)))
}

func lowStockBody(low []store.Product) string {
	var b strings.Builder
	b.WriteString("Produtos abaixo do estoque mínimo:\n\n")
	for _, product := range low {
		fmt.Fprintf(&b, "- %s (%s): %d unidade(s)\n", product.Name, product.SKU, product.Stock)
	}
	return b.String()
}

// HandleStockIntegrity recomputes each product's stock from its movement
// history and logs any drift. The check is advisory: counters are never
// rewritten by the worker.
func (p *Processor) HandleStockIntegrity(ctx context.Context, t *asynq.Task) error {
	tracker := p.jobMetrics.Track(TaskStockIntegrity)
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	snap := p.state.Load(ctx)
	drifts := stockDrift(snap)
	if len(drifts) == 0 {
		p.logger.Info("stock integrity check clean", slog.Int("products", len(snap.Products)))
		return tracker.End(nil)
	}
	for _, d := range drifts {
		p.logger.Warn("stock drift detected",
			slog.String("productId", d.ProductID),
			slog.String("name", d.Name),
			slog.Int("recorded", d.Recorded),
			slog.Int("expected", d.Expected))
	}
	return tracker.End(nil)
}

// Drift describes a product whose counter disagrees with its history.
type Drift struct {
	ProductID string
	Name      string
	Recorded  int
	Expected  int
}

// stockDrift derives the expected counter of every product as receipts minus
// sales. Products created before the movement history existed will legitimately
// differ; the caller only logs.
func stockDrift(snap store.Snapshot) []Drift {
	expected := make(map[string]int)
	for _, log := range snap.StockLogs {
		expected[log.ProductID] += log.Quantity
	}
	for _, sale := range snap.Sales {
		expected[sale.ProductID] -= sale.Quantity
	}

	var drifts []Drift
	for _, product := range snap.Products {
		if want, ok := expected[product.ID]; ok && want != product.Stock {
			drifts = append(drifts, Drift{
				ProductID: product.ID,
				Name:      product.Name,
				Recorded:  product.Stock,
				Expected:  want,
			})
		}
	}
	return drifts
}
