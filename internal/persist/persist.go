// Package persist snapshots the entity store into a durable key-value
// backend. The whole of each collection is serialized to one slot; saves
// overwrite, there is no merge.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starlink-stock/stockpro/internal/store"
)

// Slot names. Each collection is persisted independently.
const (
	SlotProducts  = "products"
	SlotSales     = "sales"
	SlotStockLogs = "stock_logs"
)

// ErrNoState indicates the slot has never been saved.
var ErrNoState = errors.New("persist: no state for slot")

// SlotStore is the durable key-value contract: load a serialized payload or
// report absence, save with overwrite semantics.
type SlotStore interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, payload []byte) error
}

// StateStore serializes snapshots in and out of a SlotStore.
type StateStore struct {
	slots  SlotStore
	logger *slog.Logger
}

// NewStateStore constructs a StateStore.
func NewStateStore(slots SlotStore, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{slots: slots, logger: logger}
}

// Load reads all three slots. An absent or undecodable slot yields an empty
// collection with a warning; startup never fails on bad state.
func (s *StateStore) Load(ctx context.Context) store.Snapshot {
	var snap store.Snapshot
	loadSlot(ctx, s, SlotProducts, &snap.Products)
	loadSlot(ctx, s, SlotSales, &snap.Sales)
	loadSlot(ctx, s, SlotStockLogs, &snap.StockLogs)
	return snap
}

// Save serializes and writes all three collections in full.
func (s *StateStore) Save(ctx context.Context, snap store.Snapshot) error {
	var errs []error
	if err := saveSlot(ctx, s, SlotProducts, snap.Products); err != nil {
		errs = append(errs, err)
	}
	if err := saveSlot(ctx, s, SlotSales, snap.Sales); err != nil {
		errs = append(errs, err)
	}
	if err := saveSlot(ctx, s, SlotStockLogs, snap.StockLogs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadProducts reads only the products slot; used by background jobs that do
// not hold the live store.
func (s *StateStore) LoadProducts(ctx context.Context) []store.Product {
	var products []store.Product
	loadSlot(ctx, s, SlotProducts, &products)
	return products
}

// LoadAll is Load with an explicit name for worker-side callers.
func (s *StateStore) LoadAll(ctx context.Context) store.Snapshot {
	return s.Load(ctx)
}

func loadSlot[T any](ctx context.Context, s *StateStore, slot string, target *[]T) {
	payload, err := s.slots.Load(ctx, slot)
	if err != nil {
		if !errors.Is(err, ErrNoState) {
			s.logger.Warn("load state slot", slog.String("slot", slot), slog.Any("error", err))
		}
		return
	}
	if err := json.Unmarshal(payload, target); err != nil {
		// Malformed state is treated as no data, the known risk of this design.
		s.logger.Warn("decode state slot, starting empty", slog.String("slot", slot), slog.Any("error", err))
		*target = nil
	}
}

func saveSlot[T any](ctx context.Context, s *StateStore, slot string, collection []T) error {
	if collection == nil {
		collection = []T{}
	}
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", slot, err)
	}
	if err := s.slots.Save(ctx, slot, payload); err != nil {
		return fmt.Errorf("persist: save %s: %w", slot, err)
	}
	return nil
}
