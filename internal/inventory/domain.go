package inventory

import (
	"errors"
	"time"
)

// Reason labels the business cause of a movement.
type Reason string

const (
	ReasonSale       Reason = "SALE"
	ReasonPurchase   Reason = "PURCHASE"
	ReasonVoid       Reason = "VOID"
	ReasonAdjustment Reason = "ADJUSTMENT"
)

// Movement is one signed quantity change for a product. Movements are
// append-only: stock is always derived as the sum over a product's
// movements, never stored, so it cannot drift from history.
type Movement struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	QuantityChange float64   `json:"quantity_change"`
	Reason         Reason    `json:"reason"`
	ReferenceKind  string    `json:"reference_kind,omitempty"`
	ReferenceID    int64     `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StockLevel pairs a product with its derived quantity on hand.
type StockLevel struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// ErrInvalidQuantity indicates a zero quantity change.
var ErrInvalidQuantity = errors.New("inventory: quantity change must be non zero")
