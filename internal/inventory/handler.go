// Package inventory exposes the product catalog and stock receipt endpoints.
package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/starlink-stock/stockpro/internal/platform/httpx"
	"github.com/starlink-stock/stockpro/internal/store"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	store     *store.Store
	validator *validator.Validate
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, st *store.Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: st, validator: validator.New()}
}

// MountProductRoutes registers product CRUD and restock routes.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/restock", h.handleRestock)
}

// MountStockLogRoutes registers the stock receipt history route.
func (h *Handler) MountStockLogRoutes(r chi.Router) {
	r.Get("/", h.handleStockLogs)
}

type productForm struct {
	Name          string    `json:"name" validate:"required"`
	Category      string    `json:"category" validate:"required"`
	SKU           string    `json:"sku" validate:"required"`
	PurchasePrice float64   `json:"purchasePrice" validate:"gte=0"`
	SellPrice     float64   `json:"sellPrice" validate:"gte=0"`
	Stock         int       `json:"stock" validate:"gte=0"`
	Supplier      string    `json:"supplier"`
	EntryDate     time.Time `json:"entryDate"`
	Images        []string  `json:"images"`
}

type restockForm struct {
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitValue float64 `json:"unitValue" validate:"gte=0"`
	Photo     string  `json:"photo"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Snapshot().Products)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeProductForm(w, r)
	if !ok {
		return
	}
	product, err := h.store.AddProduct(store.Product{
		Name:          form.Name,
		Category:      store.Category(form.Category),
		SKU:           form.SKU,
		PurchasePrice: form.PurchasePrice,
		SellPrice:     form.SellPrice,
		Stock:         form.Stock,
		Supplier:      form.Supplier,
		EntryDate:     form.EntryDate,
		Images:        form.Images,
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("sku", product.SKU),
		slog.Int("stock", product.Stock))
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, ok := h.decodeProductForm(w, r)
	if !ok {
		return
	}
	current, found := h.store.Product(id)
	if !found {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Produto não encontrado.")
		return
	}
	product, err := h.store.UpdateProduct(store.Product{
		ID:            id,
		Name:          form.Name,
		Category:      store.Category(form.Category),
		SKU:           form.SKU,
		PurchasePrice: form.PurchasePrice,
		SellPrice:     form.SellPrice,
		Stock:         form.Stock,
		Supplier:      form.Supplier,
		EntryDate:     current.EntryDate,
		Images:        form.Images,
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.logger.Info("product updated", slog.String("id", product.ID))
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProduct(id); err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.logger.Info("product deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleRestock records a stock receipt against the product; the store
// increments the counter and keeps the log immutable afterwards.
func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form restockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "corpo da requisição inválido")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Quantidade deve ser maior que zero.")
		return
	}
	log, err := h.store.AddStockLog(store.StockLog{
		ProductID: id,
		Quantity:  form.Quantity,
		UnitValue: form.UnitValue,
		Photo:     form.Photo,
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.logger.Info("stock received",
		slog.String("productId", id),
		slog.Int("quantity", log.Quantity))
	httpx.JSON(w, http.StatusCreated, log)
}

func (h *Handler) handleStockLogs(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Snapshot().StockLogs)
}

func (h *Handler) decodeProductForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "corpo da requisição inválido")
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Nome, categoria e SKU são obrigatórios.")
		return form, false
	}
	if !store.Category(form.Category).Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Categoria inválida.")
		return form, false
	}
	return form, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Produto não encontrado.")
	case errors.Is(err, store.ErrDuplicateID):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "Já existe um produto com este id.")
	case errors.Is(err, store.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Quantidade deve ser maior que zero.")
	case errors.Is(err, store.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", "Estoque insuficiente!")
	default:
		h.logger.Error("inventory operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
