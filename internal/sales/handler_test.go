package sales_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlink-stock/stockpro/internal/sales"
	"github.com/starlink-stock/stockpro/internal/store"
	_ "github.com/starlink-stock/stockpro/testing"
)

func newSalesRouter(t *testing.T) (http.Handler, *store.Store, store.Product) {
	t.Helper()
	st := store.New(store.Config{})
	product, err := st.AddProduct(store.Product{Name: "Antena Starlink V2", Category: store.CategoryAntenna, SKU: "ANT-V2", PurchasePrice: 10, SellPrice: 20, Stock: 5})
	require.NoError(t, err)
	handler := sales.NewHandler(nil, st)
	r := chi.NewRouter()
	r.Route("/api/sales", handler.MountRoutes)
	return r, st, product
}

func postSale(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	router, st, product := newSalesRouter(t)

	res := postSale(t, router,
		`{"productId":"`+product.ID+`","quantity":2,"soldPrice":25,"shippingCost":3,"paymentMethod":"Pix","customerName":"João"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var sale store.Sale
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &sale))
	assert.Equal(t, "Antena Starlink V2", sale.ProductName)
	assert.Equal(t, 50.0, sale.Total)
	assert.Equal(t, 27.0, sale.Profit)

	refreshed, found := st.Product(product.ID)
	require.True(t, found)
	assert.Equal(t, 3, refreshed.Stock)
}

func TestCreateSaleInsufficientStockReportsAvailable(t *testing.T) {
	router, _, product := newSalesRouter(t)

	res := postSale(t, router,
		`{"productId":"`+product.ID+`","quantity":9,"soldPrice":25,"paymentMethod":"Pix"}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Estoque insuficiente! (Disponível: 5)")
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	router, _, _ := newSalesRouter(t)
	res := postSale(t, router, `{"productId":"missing","quantity":1,"soldPrice":25,"paymentMethod":"Pix"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreateSaleRejectsUnknownPaymentMethod(t *testing.T) {
	router, _, product := newSalesRouter(t)
	res := postSale(t, router, `{"productId":"`+product.ID+`","quantity":1,"soldPrice":25,"paymentMethod":"Cheque"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateSaleRejectsNonPositiveQuantity(t *testing.T) {
	router, _, product := newSalesRouter(t)
	res := postSale(t, router, `{"productId":"`+product.ID+`","quantity":0,"soldPrice":25,"paymentMethod":"Pix"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListSalesNewestFirst(t *testing.T) {
	router, st, product := newSalesRouter(t)
	_, err := st.AddSale(store.Sale{ProductID: product.ID, Quantity: 1, SoldPrice: 20, PaymentMethod: "Pix"})
	require.NoError(t, err)
	_, err = st.AddSale(store.Sale{ProductID: product.ID, Quantity: 2, SoldPrice: 22, PaymentMethod: "Dinheiro"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var listed []store.Sale
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, 2, listed[0].Quantity)
	assert.Equal(t, 1, listed[1].Quantity)
}
