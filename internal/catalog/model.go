package catalog

import (
	"errors"
	"time"
)

// Product is one sellable item in the catalog.
type Product struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	SKU       *string  `json:"sku,omitempty"`
	Barcode   *string  `json:"barcode,omitempty"`
	Price     float64  `json:"price"`
	CostPrice *float64 `json:"cost_price,omitempty"`
	Category  *string  `json:"category,omitempty"`
	TaxRate   float64  `json:"tax_rate"`
	IsActive  bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductUpdate enumerates the mutable fields of a product. Nil means
// "leave unchanged". This replaces ad-hoc dynamic field lists with an
// explicit contract of what may change.
type ProductUpdate struct {
	Name      *string  `json:"name,omitempty"`
	SKU       *string  `json:"sku,omitempty"`
	Barcode   *string  `json:"barcode,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	CostPrice *float64 `json:"cost_price,omitempty"`
	Category  *string  `json:"category,omitempty"`
	TaxRate   *float64 `json:"tax_rate,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// Empty reports whether the update carries no changes.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.SKU == nil && u.Barcode == nil && u.Price == nil &&
		u.CostPrice == nil && u.Category == nil && u.TaxRate == nil && u.IsActive == nil
}

var (
	// ErrNotFound indicates a missing product.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInvalidProduct indicates validation failure.
	ErrInvalidProduct = errors.New("catalog: invalid product")
)
