// Package sales records sold inventory. Sales are immutable: totals and
// profit are computed once at registration and never recalculated.
package sales

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/starlink-stock/stockpro/internal/platform/httpx"
	"github.com/starlink-stock/stockpro/internal/store"
)

// Handler wires HTTP endpoints for the sales module.
type Handler struct {
	logger    *slog.Logger
	store     *store.Store
	validator *validator.Validate
}

// NewHandler constructs sales handler.
func NewHandler(logger *slog.Logger, st *store.Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: st, validator: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
}

type saleForm struct {
	ProductID     string    `json:"productId" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	SoldPrice     float64   `json:"soldPrice" validate:"gte=0"`
	ShippingCost  float64   `json:"shippingCost" validate:"gte=0"`
	PaymentMethod string    `json:"paymentMethod" validate:"required"`
	CustomerName  string    `json:"customerName"`
	Date          time.Time `json:"date"`
	ProofPhoto    string    `json:"proofPhoto"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Snapshot().Sales)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form saleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "corpo da requisição inválido")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Produto, quantidade e forma de pagamento são obrigatórios.")
		return
	}
	if !store.ValidPaymentMethod(form.PaymentMethod) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Forma de pagamento inválida.")
		return
	}

	product, found := h.store.Product(form.ProductID)
	if !found {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Produto não encontrado.")
		return
	}

	sale, err := h.store.AddSale(store.Sale{
		ProductID:     form.ProductID,
		Quantity:      form.Quantity,
		SoldPrice:     form.SoldPrice,
		ShippingCost:  form.ShippingCost,
		PaymentMethod: form.PaymentMethod,
		CustomerName:  form.CustomerName,
		Date:          form.Date,
		ProofPhoto:    form.ProofPhoto,
	})
	if err != nil {
		h.respondStoreError(w, err, product)
		return
	}
	h.logger.Info("sale registered",
		slog.String("id", sale.ID),
		slog.String("productId", sale.ProductID),
		slog.Int("quantity", sale.Quantity),
		slog.Float64("total", sale.Total))
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error, product store.Product) {
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable",
			fmt.Sprintf("Estoque insuficiente! (Disponível: %d)", product.Stock))
	case errors.Is(err, store.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Produto não encontrado.")
	case errors.Is(err, store.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Quantidade deve ser maior que zero.")
	default:
		h.logger.Error("register sale failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
