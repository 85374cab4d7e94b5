package pos

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/ledger"
)

// LedgerPort is the slice of the ledger the order lifecycle invokes.
type LedgerPort interface {
	PostSale(ctx context.Context, orderID int64) (ledger.Entry, error)
	VoidSale(ctx context.Context, orderID int64, reason string) ([]ledger.Entry, error)
}

// CacheBumper invalidates cached reports after posting activity.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service owns the POS order lifecycle. Ledger posting is a best-effort side
// effect of the committed order: a bookkeeping failure is logged loudly but
// never rolls the sale back from under the operator.
type Service struct {
	repo   Repository
	ledger LedgerPort
	cache  CacheBumper
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, ledgerPort LedgerPort, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledgerPort, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateOrder rings up a sale: it computes line totals and tax, checks that
// payments cover the total exactly (split payments allowed, default single
// CASH tender), commits the order with its stock-out movements in one
// transaction, then posts the sale to the ledger.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (Order, error) {
	if len(input.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	var totalAmount, totalTax float64
	items := make([]OrderItem, 0, len(input.Items))
	movements := make([]inventory.Movement, 0, len(input.Items))

	for _, in := range input.Items {
		subtotal := in.UnitPrice * in.Quantity
		tax := subtotal * in.TaxRate / 100.0
		lineTotal := subtotal + tax

		totalAmount += lineTotal
		totalTax += tax

		items = append(items, OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			TaxRate:   in.TaxRate,
			LineTotal: lineTotal,
		})
		movements = append(movements, inventory.Movement{
			ProductID:      in.ProductID,
			QuantityChange: -in.Quantity,
			Reason:         inventory.ReasonSale,
			ReferenceKind:  string(ledger.ReferencePOSOrder),
		})
	}

	payments := input.Payments
	if len(payments) == 0 {
		payments = []PaymentInput{{Method: PaymentMethodCash, Amount: totalAmount}}
	}
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	if math.Abs(paid-totalAmount) > paymentTolerance {
		return Order{}, ErrPaymentMismatch
	}

	order := Order{
		ReceiptCode:   uuid.New(),
		CreatedAt:     s.now(),
		CustomerID:    input.CustomerID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerDOB:   input.CustomerDOB,
		IsAgeVerified: input.AgeChecked,
		TotalAmount:   totalAmount,
		TotalTax:      totalTax,
		PaymentMethod: summarizeMethods(payments),
		PaymentStatus: PaymentStatusPaid,
		Items:         items,
	}
	for _, p := range payments {
		order.Payments = append(order.Payments, Payment{Method: p.Method, Amount: p.Amount})
	}

	created, err := s.repo.CreateOrder(ctx, order, movements)
	if err != nil {
		return Order{}, err
	}

	if _, err := s.ledger.PostSale(ctx, created.ID); err != nil {
		s.logger.Error("record sale in ledger failed",
			slog.Int64("order_id", created.ID), slog.Any("error", err))
	}
	s.bumpReports(ctx)

	return created, nil
}

// VoidOrder marks the order void, restores each line's stock with a
// compensating movement, and reverses the ledger. Voiding an already-void
// order is a no-op; the void flag is terminal.
func (s *Service) VoidOrder(ctx context.Context, orderID int64, reason string) error {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Voided {
		return nil
	}

	items, err := s.repo.Items(ctx, orderID)
	if err != nil {
		return err
	}
	movements := make([]inventory.Movement, 0, len(items))
	for _, it := range items {
		movements = append(movements, inventory.Movement{
			ProductID:      it.ProductID,
			QuantityChange: it.Quantity,
			Reason:         inventory.ReasonVoid,
			ReferenceKind:  string(ledger.ReferencePOSOrderVoid),
		})
	}

	if err := s.repo.MarkVoided(ctx, orderID, reason, movements); err != nil {
		return err
	}

	if _, err := s.ledger.VoidSale(ctx, orderID, reason); err != nil {
		s.logger.Error("reverse sale in ledger failed",
			slog.Int64("order_id", orderID), slog.Any("error", err))
	}
	s.bumpReports(ctx)

	return nil
}

// Get loads an order with its items and payments.
func (s *Service) Get(ctx context.Context, orderID int64) (Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.Items, err = s.repo.Items(ctx, orderID); err != nil {
		return Order{}, err
	}
	if order.Payments, err = s.repo.Payments(ctx, orderID); err != nil {
		return Order{}, err
	}
	return order, nil
}

// List returns recent orders, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}

// summarizeMethods derives the order-level payment method label: the single
// method name, or "SPLIT: A+B" across the distinct methods used.
func summarizeMethods(payments []PaymentInput) string {
	seen := make(map[string]bool)
	var methods []string
	for _, p := range payments {
		if !seen[p.Method] {
			seen[p.Method] = true
			methods = append(methods, p.Method)
		}
	}
	if len(methods) == 1 {
		return methods[0]
	}
	return "SPLIT: " + strings.Join(methods, "+")
}
