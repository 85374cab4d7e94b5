package ledger

import (
	"errors"
	"time"
)

// EntryKind classifies the business event behind a ledger entry.
type EntryKind string

const (
	EntryKindSale     EntryKind = "SALE"
	EntryKindVoidSale EntryKind = "VOID_SALE"
	EntryKindPurchase EntryKind = "PURCHASE"
)

// ReferenceKind names the originating document of an entry.
type ReferenceKind string

const (
	ReferencePOSOrder        ReferenceKind = "POS_ORDER"
	ReferencePOSOrderVoid    ReferenceKind = "POS_ORDER_VOID"
	ReferencePurchaseInvoice ReferenceKind = "PURCHASE_INVOICE"
)

// Entry is one balanced double-entry journal record. Entries are immutable
// once created; corrections are made by posting a reversing entry.
type Entry struct {
	ID            int64
	Date          time.Time
	Description   string
	Kind          EntryKind
	ReferenceKind ReferenceKind
	ReferenceID   int64
	CreatedAt     time.Time
	Lines         []Line
}

// Line is one debit-or-credit movement against one account within an entry.
type Line struct {
	ID        int64
	EntryID   int64
	AccountID int64
	Debit     float64
	Credit    float64
}

// SaleItem carries a sale line joined with the product's cost price.
type SaleItem struct {
	ProductID int64
	Quantity  float64
	UnitPrice float64
	TaxRate   float64
	LineTotal float64
	CostPrice *float64
}

// SaleDocument is the order snapshot the sale posting reads.
type SaleDocument struct {
	OrderID     int64
	CreatedAt   time.Time
	TotalAmount float64
	TotalTax    float64
	Items       []SaleItem
}

// PurchaseDocument is the invoice snapshot the purchase posting reads.
type PurchaseDocument struct {
	InvoiceID     int64
	InvoiceNumber string
	InvoiceDate   *time.Time
	CreatedAt     time.Time
	TotalAmount   float64
}

// Stats summarises ledger volume for the ledger book view.
type Stats struct {
	Entries int64 `json:"entries"`
	Lines   int64 `json:"lines"`
}

var (
	// ErrAccountNotFound means the chart of accounts was never bootstrapped
	// or an unknown name was requested. This is a programming-contract
	// violation, not a user-facing condition.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrSaleNotFound indicates the referenced order does not exist.
	ErrSaleNotFound = errors.New("ledger: order not found")
	// ErrInvoiceNotFound indicates the referenced purchase invoice does not exist.
	ErrInvoiceNotFound = errors.New("ledger: purchase invoice not found")
	// ErrUnbalanced indicates total debits differ from total credits.
	ErrUnbalanced = errors.New("ledger: entry lines must balance")
)

// balanceTolerance bounds float drift when asserting debit == credit.
const balanceTolerance = 1e-9
