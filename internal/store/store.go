// Package store holds the in-memory collections of products, sales and stock
// logs. It is the single source of truth for stock counters: sales and stock
// logs adjust the referenced product, nothing else does.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config groups optional store settings.
type Config struct {
	// AllowNegativeStock restores the permissive behavior where a sale may
	// drive a product's stock below zero.
	AllowNegativeStock bool
	// Clock overrides time.Now, used by tests.
	Clock func() time.Time
	// IDGenerator overrides uuid generation for synthesized records.
	IDGenerator func() string
}

// Store owns the three ordered collections. All mutations run under a single
// mutex, so a reader always observes a pre- or post-mutation state.
type Store struct {
	mu        sync.RWMutex
	products  []Product
	sales     []Sale
	stockLogs []StockLog

	allowNeg bool
	now      func() time.Time
	newID    func() string

	subsMu sync.RWMutex
	subs   []func(Snapshot)
}

// New constructs an empty Store.
func New(cfg Config) *Store {
	s := &Store{
		allowNeg: cfg.AllowNegativeStock,
		now:      cfg.Clock,
		newID:    cfg.IDGenerator,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Subscribe registers fn to be called with a fresh snapshot after every
// successful mutation. Callbacks run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	s.subsMu.Lock()
	s.subs = append(s.subs, fn)
	s.subsMu.Unlock()
}

// Hydrate replaces the collections with previously persisted state. It does
// not notify subscribers; it is meant for startup only.
func (s *Store) Hydrate(snap Snapshot) {
	s.mu.Lock()
	s.products = cloneProducts(snap.Products)
	s.sales = cloneSales(snap.Sales)
	s.stockLogs = cloneStockLogs(snap.StockLogs)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current state, newest first.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// AddProduct inserts a new product at the front of the collection. When the
// product starts with stock, a stock log is synthesized so the historical
// investment rollup stays consistent.
func (s *Store) AddProduct(p Product) (Product, error) {
	s.mu.Lock()
	if p.ID == "" {
		p.ID = s.newID()
	}
	if s.indexOfLocked(p.ID) >= 0 {
		s.mu.Unlock()
		return Product{}, ErrDuplicateID
	}
	if p.EntryDate.IsZero() {
		p.EntryDate = s.now()
	}
	p.Images = cloneStrings(p.Images)
	s.products = append([]Product{p}, s.products...)

	if p.Stock > 0 {
		log := StockLog{
			ID:          s.newID(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    p.Stock,
			UnitValue:   p.PurchasePrice,
			Date:        s.now(),
		}
		s.stockLogs = append([]StockLog{log}, s.stockLogs...)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return p, nil
}

// UpdateProduct replaces the stored product wholesale, keeping the original
// id and entry date. Stock-derived history is never touched.
func (s *Store) UpdateProduct(p Product) (Product, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(p.ID)
	if idx < 0 {
		s.mu.Unlock()
		return Product{}, ErrProductNotFound
	}
	p.EntryDate = s.products[idx].EntryDate
	p.Images = cloneStrings(p.Images)
	s.products[idx] = p
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return p, nil
}

// DeleteProduct removes the product from the catalog. Sales and stock logs
// referencing the id are preserved for historical reporting.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrProductNotFound
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// AddSale appends the sale and decrements the referenced product's stock.
// ProductName, Total and Profit are captured here, from the product as it is
// at sale time.
func (s *Store) AddSale(sale Sale) (Sale, error) {
	if sale.Quantity <= 0 {
		return Sale{}, ErrInvalidQuantity
	}
	s.mu.Lock()
	idx := s.indexOfLocked(sale.ProductID)
	if idx < 0 {
		s.mu.Unlock()
		return Sale{}, ErrProductNotFound
	}
	product := s.products[idx]
	if !s.allowNeg && sale.Quantity > product.Stock {
		s.mu.Unlock()
		return Sale{}, ErrInsufficientStock
	}

	if sale.ID == "" {
		sale.ID = s.newID()
	}
	if sale.Date.IsZero() {
		sale.Date = s.now()
	}
	sale.ProductName = product.Name
	sale.Total = float64(sale.Quantity) * sale.SoldPrice
	sale.Profit = sale.Total - float64(sale.Quantity)*product.PurchasePrice - sale.ShippingCost

	s.products[idx].Stock -= sale.Quantity
	s.sales = append([]Sale{sale}, s.sales...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return sale, nil
}

// AddStockLog appends the receipt and increments the referenced product's stock.
func (s *Store) AddStockLog(log StockLog) (StockLog, error) {
	if log.Quantity <= 0 {
		return StockLog{}, ErrInvalidQuantity
	}
	s.mu.Lock()
	idx := s.indexOfLocked(log.ProductID)
	if idx < 0 {
		s.mu.Unlock()
		return StockLog{}, ErrProductNotFound
	}
	if log.ID == "" {
		log.ID = s.newID()
	}
	if log.Date.IsZero() {
		log.Date = s.now()
	}
	log.ProductName = s.products[idx].Name

	s.products[idx].Stock += log.Quantity
	s.stockLogs = append([]StockLog{log}, s.stockLogs...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return log, nil
}

// Product returns the product with the given id.
func (s *Store) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return Product{}, false
	}
	p := s.products[idx]
	p.Images = cloneStrings(p.Images)
	return p, true
}

func (s *Store) indexOfLocked(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Products:  cloneProducts(s.products),
		Sales:     cloneSales(s.sales),
		StockLogs: cloneStockLogs(s.stockLogs),
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.RLock()
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	s.subsMu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	for i := range out {
		out[i].Images = cloneStrings(out[i].Images)
	}
	return out
}

func cloneSales(in []Sale) []Sale {
	out := make([]Sale, len(in))
	copy(out, in)
	return out
}

func cloneStockLogs(in []StockLog) []StockLog {
	out := make([]StockLog, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
