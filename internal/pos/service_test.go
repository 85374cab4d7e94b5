package pos

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/ledger"
)

type memoryRepo struct {
	nextID    int64
	orders    map[int64]Order
	items     map[int64][]OrderItem
	payments  map[int64][]Payment
	movements []inventory.Movement

	failCreate error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		orders:   make(map[int64]Order),
		items:    make(map[int64][]OrderItem),
		payments: make(map[int64][]Payment),
	}
}

func (m *memoryRepo) CreateOrder(_ context.Context, order Order, movements []inventory.Movement) (Order, error) {
	if m.failCreate != nil {
		return Order{}, m.failCreate
	}
	order.ID = m.nextID
	m.nextID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	for i := range order.Payments {
		order.Payments[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
	m.items[order.ID] = order.Items
	m.payments[order.ID] = order.Payments
	for _, mv := range movements {
		mv.ReferenceID = order.ID
		m.movements = append(m.movements, mv)
	}
	return order, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (m *memoryRepo) List(_ context.Context, limit int) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryRepo) Items(_ context.Context, orderID int64) ([]OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memoryRepo) Payments(_ context.Context, orderID int64) ([]Payment, error) {
	return m.payments[orderID], nil
}

func (m *memoryRepo) MarkVoided(_ context.Context, orderID int64, reason string, movements []inventory.Movement) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Voided = true
	o.PaymentStatus = PaymentStatusVoid
	o.VoidReason = &reason
	m.orders[orderID] = o
	for _, mv := range movements {
		mv.ReferenceID = orderID
		m.movements = append(m.movements, mv)
	}
	return nil
}

type fakeLedger struct {
	posted   []int64
	voided   []int64
	postErr  error
	voidErr  error
}

func (f *fakeLedger) PostSale(_ context.Context, orderID int64) (ledger.Entry, error) {
	if f.postErr != nil {
		return ledger.Entry{}, f.postErr
	}
	f.posted = append(f.posted, orderID)
	return ledger.Entry{ID: orderID}, nil
}

func (f *fakeLedger) VoidSale(_ context.Context, orderID int64, _ string) ([]ledger.Entry, error) {
	if f.voidErr != nil {
		return nil, f.voidErr
	}
	f.voided = append(f.voided, orderID)
	return []ledger.Entry{{ID: orderID}}, nil
}

type countingBumper struct{ bumps int }

func (c *countingBumper) Bump(context.Context) error {
	c.bumps++
	return nil
}

func newTestService(repo Repository, lp LedgerPort) *Service {
	return NewService(repo, lp, nil, slog.New(slog.DiscardHandler))
}

func TestCreateOrderComputesTotalsAndTax(t *testing.T) {
	repo := newMemoryRepo()
	lp := &fakeLedger{}
	svc := newTestService(repo, lp)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 10, TaxRate: 10},
			{ProductID: 2, Quantity: 1, UnitPrice: 5, TaxRate: 0},
		},
	})
	require.NoError(t, err)

	// 2*10 = 20 + 10% tax = 22, plus 5 untaxed.
	assert.InDelta(t, 27.0, order.TotalAmount, 1e-9)
	assert.InDelta(t, 2.0, order.TotalTax, 1e-9)
	assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", order.ReceiptCode.String())

	// No tenders supplied: a single CASH payment covering the total.
	require.Len(t, order.Payments, 1)
	assert.Equal(t, PaymentMethodCash, order.Payments[0].Method)
	assert.InDelta(t, 27.0, order.Payments[0].Amount, 1e-9)
	assert.Equal(t, PaymentMethodCash, order.PaymentMethod)

	// Each line left the shelf.
	require.Len(t, repo.movements, 2)
	assert.InDelta(t, -2.0, repo.movements[0].QuantityChange, 1e-9)
	assert.InDelta(t, -1.0, repo.movements[1].QuantityChange, 1e-9)
	assert.Equal(t, inventory.ReasonSale, repo.movements[0].Reason)

	assert.Equal(t, []int64{order.ID}, lp.posted)
}

func TestCreateOrderRejectsEmptyAndMismatchedPayments(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeLedger{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		Items:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
		Payments: []PaymentInput{{Method: "CARD", Amount: 9.50}},
	})
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestCreateOrderSummarizesSplitPayments(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakeLedger{})

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
		Payments: []PaymentInput{
			{Method: "CASH", Amount: 4},
			{Method: "CARD", Amount: 6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SPLIT: CASH+CARD", order.PaymentMethod)
	assert.Len(t, order.Payments, 2)
}

func TestCreateOrderSurvivesLedgerFailure(t *testing.T) {
	repo := newMemoryRepo()
	lp := &fakeLedger{postErr: errors.New("ledger down")}
	svc := newTestService(repo, lp)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	// The sale committed even though bookkeeping did not.
	_, ok := repo.orders[order.ID]
	assert.True(t, ok)
}

func TestVoidOrderRestoresStockAndReversesLedger(t *testing.T) {
	repo := newMemoryRepo()
	lp := &fakeLedger{}
	svc := newTestService(repo, lp)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{{ProductID: 7, Quantity: 3, UnitPrice: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.VoidOrder(context.Background(), order.ID, "ring error"))

	got, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Voided)
	assert.Equal(t, PaymentStatusVoid, got.PaymentStatus)
	require.NotNil(t, got.VoidReason)
	assert.Equal(t, "ring error", *got.VoidReason)

	// One -3 sale movement, one +3 compensating movement.
	require.Len(t, repo.movements, 2)
	assert.InDelta(t, -3.0, repo.movements[0].QuantityChange, 1e-9)
	assert.InDelta(t, 3.0, repo.movements[1].QuantityChange, 1e-9)
	assert.Equal(t, inventory.ReasonVoid, repo.movements[1].Reason)

	assert.Equal(t, []int64{order.ID}, lp.voided)
}

func TestVoidOrderTwiceIsNoop(t *testing.T) {
	repo := newMemoryRepo()
	lp := &fakeLedger{}
	svc := newTestService(repo, lp)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.VoidOrder(context.Background(), order.ID, "first"))
	require.NoError(t, svc.VoidOrder(context.Background(), order.ID, "second"))

	// No duplicate compensating movements, no second reversal.
	assert.Len(t, repo.movements, 2)
	assert.Equal(t, []int64{order.ID}, lp.voided)

	got, _ := repo.Get(context.Background(), order.ID)
	assert.Equal(t, "first", *got.VoidReason)
}

func TestVoidOrderNotFound(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeLedger{})
	err := svc.VoidOrder(context.Background(), 404, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityBumpsReportCache(t *testing.T) {
	repo := newMemoryRepo()
	bumper := &countingBumper{}
	svc := NewService(repo, &fakeLedger{}, bumper, slog.New(slog.DiscardHandler))
	svc.WithNow(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Items: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.VoidOrder(context.Background(), order.ID, "x"))

	assert.Equal(t, 2, bumper.bumps)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), order.CreatedAt)
}
