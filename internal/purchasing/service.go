package purchasing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/ledger"
)

// LedgerPort is the slice of the ledger invoked when an invoice is received.
type LedgerPort interface {
	PostPurchase(ctx context.Context, invoiceID int64) (ledger.Entry, error)
}

// CacheBumper invalidates cached reports after posting activity.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service owns suppliers and incoming stock. Like sales, the ledger posting
// is best-effort against the committed invoice.
type Service struct {
	repo   Repository
	ledger LedgerPort
	cache  CacheBumper
	logger *slog.Logger
}

func NewService(repo Repository, ledgerPort LedgerPort, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledgerPort, cache: cache, logger: logger}
}

func (s *Service) CreateSupplier(ctx context.Context, sup Supplier) (Supplier, error) {
	if strings.TrimSpace(sup.Name) == "" {
		return Supplier{}, ErrInvalidSupplier
	}
	return s.repo.CreateSupplier(ctx, sup)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) UpdateSupplier(ctx context.Context, sup Supplier) (Supplier, error) {
	if strings.TrimSpace(sup.Name) == "" {
		return Supplier{}, ErrInvalidSupplier
	}
	return s.repo.UpdateSupplier(ctx, sup)
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.repo.DeleteSupplier(ctx, id)
}

// CreateInvoice receives a purchase invoice: it totals the lines, commits
// the invoice with a stock-in movement per line in one transaction, then
// posts the purchase to the ledger.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	if len(input.Items) == 0 {
		return Invoice{}, ErrEmptyInvoice
	}

	var total float64
	items := make([]InvoiceItem, 0, len(input.Items))
	movements := make([]inventory.Movement, 0, len(input.Items))
	for _, in := range input.Items {
		lineTotal := in.Quantity * in.UnitCost
		total += lineTotal
		items = append(items, InvoiceItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitCost:  in.UnitCost,
			LineTotal: lineTotal,
		})
		movements = append(movements, inventory.Movement{
			ProductID:      in.ProductID,
			QuantityChange: in.Quantity,
			Reason:         inventory.ReasonPurchase,
			ReferenceKind:  string(ledger.ReferencePurchaseInvoice),
		})
	}

	invoice := Invoice{
		DocumentCode:  uuid.New(),
		SupplierID:    input.SupplierID,
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		TotalAmount:   total,
		PaymentStatus: PaymentStatusUnpaid,
		PaymentMethod: input.PaymentMethod,
		DueDate:       input.DueDate,
		Items:         items,
	}

	created, err := s.repo.CreateInvoice(ctx, invoice, movements)
	if err != nil {
		return Invoice{}, err
	}

	if _, err := s.ledger.PostPurchase(ctx, created.ID); err != nil {
		s.logger.Error("record purchase in ledger failed",
			slog.Int64("invoice_id", created.ID), slog.Any("error", err))
	}
	s.bumpReports(ctx)

	return created, nil
}

// GetInvoice loads an invoice with its items.
func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Items, err = s.repo.InvoiceItems(ctx, id); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, limit int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListInvoices(ctx, limit)
}

// RecordPayment stores a payment and refreshes the invoice's payment label.
// Payments adjust the UNPAID/PARTIAL/PAID status only; cash-basis books
// recognise the purchase at receipt, so no journal entry is written here.
func (s *Service) RecordPayment(ctx context.Context, input PaymentInput) (SupplierPayment, error) {
	payment := SupplierPayment{
		SupplierID:  input.SupplierID,
		InvoiceID:   input.InvoiceID,
		PaymentDate: input.PaymentDate,
		Amount:      input.Amount,
		Method:      input.Method,
		Reference:   input.Reference,
	}
	if payment.PaymentDate == nil {
		today := time.Now()
		payment.PaymentDate = &today
	}

	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return SupplierPayment{}, err
	}

	if input.InvoiceID != nil {
		if err := s.refreshPaymentStatus(ctx, *input.InvoiceID); err != nil {
			s.logger.Warn("refresh invoice payment status",
				slog.Int64("invoice_id", *input.InvoiceID), slog.Any("error", err))
		}
	}
	return created, nil
}

func (s *Service) ListPayments(ctx context.Context, supplierID int64) ([]SupplierPayment, error) {
	return s.repo.ListPayments(ctx, supplierID)
}

func (s *Service) refreshPaymentStatus(ctx context.Context, invoiceID int64) error {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	paid, err := s.repo.PaidTotal(ctx, invoiceID)
	if err != nil {
		return err
	}
	status := PaymentStatusUnpaid
	switch {
	case paid >= inv.TotalAmount-0.005:
		status = PaymentStatusPaid
	case paid > 0:
		status = PaymentStatusPart
	}
	return s.repo.SetPaymentStatus(ctx, invoiceID, status)
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}
