package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/starlink-stock/stockpro/internal/store"
)

const saveTimeout = 10 * time.Second

// Persister subscribes to store mutations and writes snapshots in the
// background. Saves are fire-and-forget: a failed write is logged, never
// surfaced to the mutating request. Bursts coalesce, the latest snapshot wins.
type Persister struct {
	state     *StateStore
	logger    *slog.Logger
	pending   chan store.Snapshot
	onFailure func()
}

// NewPersister constructs a Persister.
func NewPersister(state *StateStore, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		state:   state,
		logger:  logger,
		pending: make(chan store.Snapshot, 1),
	}
}

// OnFailure registers a callback invoked after every failed save. Must be set
// before Run.
func (p *Persister) OnFailure(fn func()) {
	p.onFailure = fn
}

// Notify hands a snapshot to the background writer without blocking the
// mutating goroutine. An older queued snapshot is dropped in favor of the
// newer one.
func (p *Persister) Notify(snap store.Snapshot) {
	for {
		select {
		case p.pending <- snap:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

// Run processes queued snapshots until ctx is canceled, flushing any pending
// snapshot before returning.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case snap := <-p.pending:
				p.save(snap)
			default:
			}
			return nil
		case snap := <-p.pending:
			p.save(snap)
		}
	}
}

func (p *Persister) save(snap store.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.state.Save(ctx, snap); err != nil {
		p.logger.Error("persist snapshot", slog.Any("error", err))
		if p.onFailure != nil {
			p.onFailure()
		}
	}
}
