package inventory_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlink-stock/stockpro/internal/inventory"
	"github.com/starlink-stock/stockpro/internal/store"
	_ "github.com/starlink-stock/stockpro/testing"
)

func newInventoryRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st := store.New(store.Config{})
	handler := inventory.NewHandler(nil, st)
	r := chi.NewRouter()
	r.Route("/api/products", handler.MountProductRoutes)
	r.Route("/api/stock-logs", handler.MountStockLogRoutes)
	return r, st
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateProductSynthesizesStockLog(t *testing.T) {
	router, st := newInventoryRouter(t)

	res := doJSON(t, router, http.MethodPost, "/api/products",
		`{"name":"Antena Starlink V2","category":"Antena","sku":"ANT-V2","purchasePrice":10,"sellPrice":20,"stock":5,"supplier":"SpaceNet"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created store.Product
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 5, created.Stock)

	snap := st.Snapshot()
	require.Len(t, snap.StockLogs, 1)
	assert.Equal(t, created.ID, snap.StockLogs[0].ProductID)
	assert.Equal(t, 5, snap.StockLogs[0].Quantity)
	assert.Equal(t, 10.0, snap.StockLogs[0].UnitValue)
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	router, _ := newInventoryRouter(t)
	res := doJSON(t, router, http.MethodPost, "/api/products",
		`{"name":"Coisa","category":"Eletrônicos","sku":"X-1","purchasePrice":1,"sellPrice":2,"stock":0}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateProductRejectsMissingFields(t *testing.T) {
	router, _ := newInventoryRouter(t)
	res := doJSON(t, router, http.MethodPost, "/api/products", `{"name":"","category":"Antena","sku":""}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateProductPreservesEntryDate(t *testing.T) {
	router, st := newInventoryRouter(t)
	created, err := st.AddProduct(store.Product{Name: "Cabo 10m", Category: store.CategoryCable, SKU: "CAB-10", PurchasePrice: 5, SellPrice: 9, Stock: 2})
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodPut, "/api/products/"+created.ID,
		`{"name":"Cabo 15m","category":"Cabo","sku":"CAB-15","purchasePrice":6,"sellPrice":11,"stock":2}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var updated store.Product
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "Cabo 15m", updated.Name)
	assert.True(t, updated.EntryDate.Equal(created.EntryDate))
}

func TestUpdateUnknownProduct(t *testing.T) {
	router, _ := newInventoryRouter(t)
	res := doJSON(t, router, http.MethodPut, "/api/products/missing",
		`{"name":"Cabo","category":"Cabo","sku":"CAB","purchasePrice":1,"sellPrice":2,"stock":0}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestDeleteProductKeepsHistory(t *testing.T) {
	router, st := newInventoryRouter(t)
	created, err := st.AddProduct(store.Product{Name: "Roteador", Category: store.CategoryOther, SKU: "ROT-1", PurchasePrice: 3, SellPrice: 7, Stock: 4})
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodDelete, "/api/products/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, res.Code)

	snap := st.Snapshot()
	assert.Empty(t, snap.Products)
	assert.Len(t, snap.StockLogs, 1)
}

func TestRestockIncrementsStock(t *testing.T) {
	router, st := newInventoryRouter(t)
	created, err := st.AddProduct(store.Product{Name: "Antena", Category: store.CategoryAntenna, SKU: "ANT-1", PurchasePrice: 10, SellPrice: 20, Stock: 1})
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodPost, "/api/products/"+created.ID+"/restock",
		`{"quantity":3,"unitValue":9.5}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	refreshed, found := st.Product(created.ID)
	require.True(t, found)
	assert.Equal(t, 4, refreshed.Stock)
}

func TestRestockRejectsNonPositiveQuantity(t *testing.T) {
	router, st := newInventoryRouter(t)
	created, err := st.AddProduct(store.Product{Name: "Antena", Category: store.CategoryAntenna, SKU: "ANT-1", PurchasePrice: 10, SellPrice: 20, Stock: 1})
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodPost, "/api/products/"+created.ID+"/restock", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestStockLogsNewestFirst(t *testing.T) {
	router, st := newInventoryRouter(t)
	created, err := st.AddProduct(store.Product{Name: "Antena", Category: store.CategoryAntenna, SKU: "ANT-1", PurchasePrice: 10, SellPrice: 20, Stock: 2})
	require.NoError(t, err)
	_, err = st.AddStockLog(store.StockLog{ProductID: created.ID, Quantity: 7, UnitValue: 8})
	require.NoError(t, err)

	res := doJSON(t, router, http.MethodGet, "/api/stock-logs", "")
	require.Equal(t, http.StatusOK, res.Code)

	var logs []store.StockLog
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, 7, logs[0].Quantity)
	assert.Equal(t, 2, logs[1].Quantity)
}
