package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
}

func newTestStore() *Store {
	return New(Config{Clock: fixedClock(), IDGenerator: seqIDs()})
}

func antennaProduct(id string, stock int) Product {
	return Product{
		ID:            id,
		Name:          "Antena Starlink V2",
		Category:      CategoryAntenna,
		SKU:           "ANT-V2",
		PurchasePrice: 10,
		SellPrice:     20,
		Stock:         stock,
	}
}

func TestAddProductWithoutStockCreatesNoLog(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 0))
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Len(t, snap.Products, 1)
	assert.Empty(t, snap.StockLogs)
}

func TestAddProductWithStockSynthesizesInitialLog(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 5))
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.StockLogs, 1)
	log := snap.StockLogs[0]
	assert.Equal(t, "p1", log.ProductID)
	assert.Equal(t, "Antena Starlink V2", log.ProductName)
	assert.Equal(t, 5, log.Quantity)
	assert.Equal(t, 10.0, log.UnitValue)
	assert.False(t, log.Date.IsZero())
}

func TestAddProductRejectsDuplicateID(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 0))
	require.NoError(t, err)
	_, err = s.AddProduct(antennaProduct("p1", 0))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestUpdateProductPreservesEntryDateAndHistory(t *testing.T) {
	s := newTestStore()
	created, err := s.AddProduct(antennaProduct("p1", 3))
	require.NoError(t, err)

	edited := created
	edited.Name = "Antena Starlink V3"
	edited.SellPrice = 25
	edited.EntryDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.UpdateProduct(edited)
	require.NoError(t, err)

	assert.Equal(t, created.EntryDate, updated.EntryDate)
	snap := s.Snapshot()
	assert.Equal(t, "Antena Starlink V3", snap.Products[0].Name)
	// Log history keeps the name captured at receipt time.
	assert.Equal(t, "Antena Starlink V2", snap.StockLogs[0].ProductName)
}

func TestUpdateProductUnknownID(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateProduct(antennaProduct("missing", 0))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 5))
	require.NoError(t, err)

	sale, err := s.AddSale(Sale{
		ProductID:     "p1",
		Quantity:      2,
		SoldPrice:     25,
		ShippingCost:  3,
		PaymentMethod: "Pix",
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, sale.Total)
	assert.Equal(t, 27.0, sale.Profit)
	assert.Equal(t, "Antena Starlink V2", sale.ProductName)

	p, ok := s.Product("p1")
	require.True(t, ok)
	assert.Equal(t, 3, p.Stock)
}

func TestAddSaleInsufficientStock(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 1))
	require.NoError(t, err)

	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 2, SoldPrice: 25})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	p, _ := s.Product("p1")
	assert.Equal(t, 1, p.Stock)
}

func TestAddSaleNegativeStockAllowedWhenConfigured(t *testing.T) {
	s := New(Config{AllowNegativeStock: true, Clock: fixedClock(), IDGenerator: seqIDs()})
	_, err := s.AddProduct(antennaProduct("p1", 1))
	require.NoError(t, err)

	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 3, SoldPrice: 25})
	require.NoError(t, err)

	p, _ := s.Product("p1")
	assert.Equal(t, -2, p.Stock)
}

func TestAddSaleUnknownProduct(t *testing.T) {
	s := newTestStore()
	_, err := s.AddSale(Sale{ProductID: "ghost", Quantity: 1, SoldPrice: 10})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddStockLogIncrementsStockMonotonically(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 0))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := s.AddStockLog(StockLog{ProductID: "p1", Quantity: 2, UnitValue: 9})
		require.NoError(t, err)
		p, _ := s.Product("p1")
		assert.Equal(t, 2*i, p.Stock)
		assert.Len(t, s.Snapshot().StockLogs, i)
	}
}

func TestCollectionsAreNewestFirst(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 10))
	require.NoError(t, err)
	second := antennaProduct("p2", 0)
	second.Name = "Cabo 50m"
	second.Category = CategoryCable
	_, err = s.AddProduct(second)
	require.NoError(t, err)

	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 1, SoldPrice: 20})
	require.NoError(t, err)
	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 2, SoldPrice: 20})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "p2", snap.Products[0].ID)
	assert.Equal(t, 2, snap.Sales[0].Quantity)
}

func TestDeleteProductPreservesSalesAndLogs(t *testing.T) {
	s := newTestStore()
	_, err := s.AddProduct(antennaProduct("p1", 5))
	require.NoError(t, err)
	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 2, SoldPrice: 25, ShippingCost: 3})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct("p1"))

	snap := s.Snapshot()
	assert.Empty(t, snap.Products)
	require.Len(t, snap.Sales, 1)
	assert.Equal(t, "Antena Starlink V2", snap.Sales[0].ProductName)
	assert.Equal(t, 27.0, snap.Sales[0].Profit)
	assert.Len(t, snap.StockLogs, 1)
}

func TestSubscribeNotifiedAfterEachMutation(t *testing.T) {
	s := newTestStore()
	var notifications []Snapshot
	s.Subscribe(func(snap Snapshot) { notifications = append(notifications, snap) })

	_, err := s.AddProduct(antennaProduct("p1", 2))
	require.NoError(t, err)
	_, err = s.AddSale(Sale{ProductID: "p1", Quantity: 1, SoldPrice: 20})
	require.NoError(t, err)

	require.Len(t, notifications, 2)
	assert.Equal(t, 2, notifications[0].Products[0].Stock)
	assert.Equal(t, 1, notifications[1].Products[0].Stock)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore()
	p := antennaProduct("p1", 1)
	p.Images = []string{"img-1"}
	_, err := s.AddProduct(p)
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Products[0].Stock = 99
	snap.Products[0].Images[0] = "tampered"

	fresh := s.Snapshot()
	assert.Equal(t, 1, fresh.Products[0].Stock)
	assert.Equal(t, "img-1", fresh.Products[0].Images[0])
}

func TestHydrateDoesNotNotify(t *testing.T) {
	s := newTestStore()
	called := false
	s.Subscribe(func(Snapshot) { called = true })
	s.Hydrate(Snapshot{Products: []Product{antennaProduct("p1", 4)}})
	assert.False(t, called)
	p, ok := s.Product("p1")
	require.True(t, ok)
	assert.Equal(t, 4, p.Stock)
}
