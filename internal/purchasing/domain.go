package purchasing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusPart   = "PARTIAL"
)

// Supplier is a vendor the business buys stock from.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   *string   `json:"contact,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Invoice is a received purchase invoice. Posting an invoice brings its
// items into stock and records the purchase in the ledger.
type Invoice struct {
	ID            int64         `json:"id"`
	DocumentCode  uuid.UUID     `json:"document_code"`
	SupplierID    *int64        `json:"supplier_id,omitempty"`
	InvoiceNumber *string       `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time    `json:"invoice_date,omitempty"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentStatus string        `json:"payment_status"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []InvoiceItem `json:"items,omitempty"`
}

// InvoiceItem is one purchased line at its unit cost.
type InvoiceItem struct {
	ID        int64   `json:"id"`
	InvoiceID int64   `json:"invoice_id"`
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	LineTotal float64 `json:"line_total"`
}

// SupplierPayment records money paid out against an invoice. It is a plain
// record: it updates the invoice's payment label but writes no journal
// entry of its own.
type SupplierPayment struct {
	ID          int64      `json:"id"`
	SupplierID  *int64     `json:"supplier_id,omitempty"`
	InvoiceID   *int64     `json:"invoice_id,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Amount      float64    `json:"amount"`
	Method      *string    `json:"method,omitempty"`
	Reference   *string    `json:"reference,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InvoiceLineInput is one requested purchase line.
type InvoiceLineInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
}

// CreateInvoiceInput carries a new purchase invoice.
type CreateInvoiceInput struct {
	SupplierID    *int64             `json:"supplier_id,omitempty"`
	InvoiceNumber *string            `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time         `json:"invoice_date,omitempty"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	Items         []InvoiceLineInput `json:"items" validate:"required,min=1,dive"`
}

// PaymentInput records a payment against a supplier or invoice.
type PaymentInput struct {
	SupplierID  *int64     `json:"supplier_id,omitempty"`
	InvoiceID   *int64     `json:"invoice_id,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Method      *string    `json:"method,omitempty"`
	Reference   *string    `json:"reference,omitempty"`
}

var (
	// ErrSupplierNotFound indicates the supplier does not exist.
	ErrSupplierNotFound = errors.New("purchasing: supplier not found")
	// ErrInvoiceNotFound indicates the invoice does not exist.
	ErrInvoiceNotFound = errors.New("purchasing: invoice not found")
	// ErrEmptyInvoice indicates an invoice with no line items.
	ErrEmptyInvoice = errors.New("purchasing: invoice requires at least one item")
	// ErrInvalidSupplier indicates a supplier failing validation.
	ErrInvalidSupplier = errors.New("purchasing: invalid supplier")
)
