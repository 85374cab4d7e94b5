package pos

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPaid = "PAID"
	PaymentStatusVoid = "VOID"

	PaymentMethodCash = "CASH"
)

// Order is one completed POS sale. Once voided it is terminal: it cannot be
// voided again or re-posted.
type Order struct {
	ID            int64      `json:"id"`
	ReceiptCode   uuid.UUID  `json:"receipt_code"`
	CreatedAt     time.Time  `json:"created_at"`
	CustomerID    *int64     `json:"customer_id,omitempty"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
	CustomerDOB   *time.Time `json:"customer_dob,omitempty"`
	IsAgeVerified bool       `json:"is_age_verified"`
	TotalAmount   float64    `json:"total_amount"`
	TotalTax      float64    `json:"total_tax"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	Voided        bool       `json:"voided"`
	VoidReason    *string    `json:"void_reason,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	Payments      []Payment   `json:"payments,omitempty"`
}

// OrderItem is one sale line with its captured unit price and tax rate.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	LineTotal   float64 `json:"line_total"`
}

// Payment is one tender against an order. Split payments are allowed; their
// total must equal the order total.
type Payment struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// LineInput describes one requested sale line.
type LineInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	TaxRate   float64 `json:"tax_rate" validate:"gte=0"`
}

// PaymentInput describes one tender in the request.
type PaymentInput struct {
	Method string  `json:"method" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// CreateOrderInput carries everything needed to ring up a sale.
type CreateOrderInput struct {
	Items         []LineInput    `json:"items" validate:"required,min=1,dive"`
	Payments      []PaymentInput `json:"payments" validate:"dive"`
	CustomerID    *int64         `json:"customer_id,omitempty"`
	CustomerName  *string        `json:"customer_name,omitempty"`
	CustomerPhone *string        `json:"customer_phone,omitempty"`
	CustomerDOB   *time.Time     `json:"customer_dob,omitempty"`
	AgeChecked    bool           `json:"age_checked"`
}

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("pos: order not found")
	// ErrEmptyOrder indicates an order with no line items.
	ErrEmptyOrder = errors.New("pos: order requires at least one item")
	// ErrPaymentMismatch indicates payments do not cover the order total exactly.
	ErrPaymentMismatch = errors.New("pos: payments must equal order total")
)

// paymentTolerance absorbs float drift when comparing tender sums against
// the order total.
const paymentTolerance = 0.005
