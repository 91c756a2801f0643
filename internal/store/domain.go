package store

import (
	"errors"
	"time"
)

// Category enumerates the product categories carried by the shop.
type Category string

const (
	CategoryAntenna   Category = "Antena"
	CategoryCable     Category = "Cabo"
	CategoryAccessory Category = "Acessório"
	CategoryOther     Category = "Outros"
)

// Categories lists every valid category, in display order.
var Categories = []Category{CategoryAntenna, CategoryCable, CategoryAccessory, CategoryOther}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PaymentMethods lists the accepted payment methods for sales.
var PaymentMethods = []string{"Pix", "Cartão de Crédito", "Cartão de Débito", "Dinheiro", "Transferência"}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Product is a catalog item. Stock is the only field mutated outside an
// explicit edit; sales decrement it and stock logs increment it.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	SKU           string    `json:"sku"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellPrice     float64   `json:"sellPrice"`
	Stock         int       `json:"stock"`
	Supplier      string    `json:"supplier,omitempty"`
	EntryDate     time.Time `json:"entryDate"`
	Images        []string  `json:"images,omitempty"`
}

// Sale is an immutable record of inventory sold. ProductName, Total and
// Profit are captured at creation time and never resynced from the live
// product; shipping cost is paid by the seller and reduces profit.
type Sale struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	Quantity      int       `json:"quantity"`
	SoldPrice     float64   `json:"soldPrice"`
	ShippingCost  float64   `json:"shippingCost"`
	Total         float64   `json:"total"`
	Profit        float64   `json:"profit"`
	PaymentMethod string    `json:"paymentMethod"`
	CustomerName  string    `json:"customerName,omitempty"`
	Date          time.Time `json:"date"`
	ProofPhoto    string    `json:"proofPhoto,omitempty"`
}

// StockLog is an immutable record of inventory received, covering explicit
// restocks and the synthetic entry created when a product starts pre-stocked.
type StockLog struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitValue   float64   `json:"unitValue"`
	Photo       string    `json:"photo,omitempty"`
	Date        time.Time `json:"date"`
}

// Snapshot is a deep copy of the three collections, newest first.
type Snapshot struct {
	Products  []Product  `json:"products"`
	Sales     []Sale     `json:"sales"`
	StockLogs []StockLog `json:"stockLogs"`
}

var (
	// ErrDuplicateID is returned when a product id already exists.
	ErrDuplicateID = errors.New("store: duplicate product id")
	// ErrProductNotFound is returned when an operation references an unknown product.
	ErrProductNotFound = errors.New("store: product not found")
	// ErrInsufficientStock is returned when a sale would drive stock negative.
	ErrInsufficientStock = errors.New("store: insufficient stock")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("store: quantity must be positive")
)
