// Package metrics computes the financial aggregates shown on the dashboard.
// Every function is a pure fold over a store snapshot; nothing is cached, a
// read always reflects the snapshot it was given.
package metrics

import (
	"sort"

	"github.com/starlink-stock/stockpro/internal/store"
)

// LowStockThreshold marks products needing replenishment (stock strictly below).
const LowStockThreshold = 5

// TopSellersLimit caps the sold-quantity ranking.
const TopSellersLimit = 5

// Summary aggregates the headline financial figures.
type Summary struct {
	CurrentInventoryValue     float64 `json:"currentInventoryValue"`
	PotentialRevenue          float64 `json:"potentialRevenue"`
	PotentialRemainingProfit  float64 `json:"potentialRemainingProfit"`
	TotalHistoricalInvestment float64 `json:"totalHistoricalInvestment"`
	TotalRevenue              float64 `json:"totalRevenue"`
	TotalProfit               float64 `json:"totalProfit"`
	TotalShipping             float64 `json:"totalShipping"`
	RemainingMarginPct        float64 `json:"remainingMarginPct"`
	LowStockCount             int     `json:"lowStockCount"`
}

// ProductHealth is the per-product row of the dashboard table.
type ProductHealth struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	SKU              string  `json:"sku"`
	Stock            int     `json:"stock"`
	ProjectedRevenue float64 `json:"projectedRevenue"`
	MarginPct        float64 `json:"marginPct"`
	LowStock         bool    `json:"lowStock"`
}

// TopSeller is one entry of the sold-quantity ranking.
type TopSeller struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Summarize folds the snapshot into the headline figures.
func Summarize(snap store.Snapshot) Summary {
	var s Summary
	for _, p := range snap.Products {
		stock := float64(p.Stock)
		s.CurrentInventoryValue += p.PurchasePrice * stock
		s.PotentialRevenue += p.SellPrice * stock
		s.PotentialRemainingProfit += (p.SellPrice - p.PurchasePrice) * stock
		if p.Stock < LowStockThreshold {
			s.LowStockCount++
		}
	}
	for _, log := range snap.StockLogs {
		s.TotalHistoricalInvestment += log.UnitValue * float64(log.Quantity)
	}
	for _, sale := range snap.Sales {
		s.TotalRevenue += sale.Total
		s.TotalProfit += sale.Profit
		s.TotalShipping += sale.ShippingCost
	}
	s.RemainingMarginPct = safePercent(s.PotentialRemainingProfit, s.PotentialRevenue)
	return s
}

// LowStock returns the products whose stock is strictly below the threshold.
func LowStock(snap store.Snapshot) []store.Product {
	var out []store.Product
	for _, p := range snap.Products {
		if p.Stock < LowStockThreshold {
			out = append(out, p)
		}
	}
	return out
}

// ProductMarginPct returns the gross margin of one product as a percentage of
// purchase cost, zero when the purchase price is zero.
func ProductMarginPct(p store.Product) float64 {
	if almostZero(p.PurchasePrice) {
		return 0
	}
	return (p.SellPrice - p.PurchasePrice) / p.PurchasePrice * 100
}

// Health builds the per-product analytics rows, in catalog order.
func Health(snap store.Snapshot) []ProductHealth {
	rows := make([]ProductHealth, 0, len(snap.Products))
	for _, p := range snap.Products {
		rows = append(rows, ProductHealth{
			ID:               p.ID,
			Name:             p.Name,
			SKU:              p.SKU,
			Stock:            p.Stock,
			ProjectedRevenue: p.SellPrice * float64(p.Stock),
			MarginPct:        ProductMarginPct(p),
			LowStock:         p.Stock < LowStockThreshold,
		})
	}
	return rows
}

// TopSellers groups sales by product, sums quantities and returns the top
// entries by volume. Products with zero sales are excluded; when the product
// was deleted the name captured on the sale is used.
func TopSellers(snap store.Snapshot, limit int) []TopSeller {
	if limit <= 0 {
		limit = TopSellersLimit
	}
	quantities := make(map[string]int)
	names := make(map[string]string)
	order := make([]string, 0)
	for _, sale := range snap.Sales {
		if _, seen := quantities[sale.ProductID]; !seen {
			order = append(order, sale.ProductID)
			names[sale.ProductID] = sale.ProductName
		}
		quantities[sale.ProductID] += sale.Quantity
	}
	for _, p := range snap.Products {
		if _, ok := quantities[p.ID]; ok {
			names[p.ID] = p.Name
		}
	}

	ranking := make([]TopSeller, 0, len(order))
	for _, id := range order {
		if quantities[id] <= 0 {
			continue
		}
		ranking = append(ranking, TopSeller{ProductID: id, Name: names[id], Quantity: quantities[id]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Quantity > ranking[j].Quantity
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

func safePercent(value, total float64) float64 {
	if almostZero(total) {
		return 0
	}
	return (value / total) * 100
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}
