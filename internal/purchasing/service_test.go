package purchasing

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
	suppliers map[int64]Supplier
	invoices  map[int64]Invoice
	items     map[int64][]InvoiceItem
	payments  []SupplierPayment
	movements []inventory.Movement
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:    1,
		suppliers: make(map[int64]Supplier),
		invoices:  make(map[int64]Invoice),
		items:     make(map[int64][]InvoiceItem),
	}
}

func (m *memoryRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryRepo) CreateSupplier(_ context.Context, s Supplier) (Supplier, error) {
	s.ID = m.id()
	s.CreatedAt = time.Now()
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *memoryRepo) GetSupplier(_ context.Context, id int64) (Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return Supplier{}, ErrSupplierNotFound
	}
	return s, nil
}

func (m *memoryRepo) ListSuppliers(context.Context) ([]Supplier, error) {
	var out []Supplier
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) UpdateSupplier(_ context.Context, s Supplier) (Supplier, error) {
	if _, ok := m.suppliers[s.ID]; !ok {
		return Supplier{}, ErrSupplierNotFound
	}
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *memoryRepo) DeleteSupplier(_ context.Context, id int64) error {
	if _, ok := m.suppliers[id]; !ok {
		return ErrSupplierNotFound
	}
	delete(m.suppliers, id)
	return nil
}

func (m *memoryRepo) CreateInvoice(_ context.Context, inv Invoice, movements []inventory.Movement) (Invoice, error) {
	inv.ID = m.id()
	inv.CreatedAt = time.Now()
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
	}
	m.invoices[inv.ID] = inv
	m.items[inv.ID] = inv.Items
	for _, mv := range movements {
		mv.ReferenceID = inv.ID
		m.movements = append(m.movements, mv)
	}
	return inv, nil
}

func (m *memoryRepo) GetInvoice(_ context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (m *memoryRepo) ListInvoices(_ context.Context, limit int) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		out = append(out, inv)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryRepo) InvoiceItems(_ context.Context, invoiceID int64) ([]InvoiceItem, error) {
	return m.items[invoiceID], nil
}

func (m *memoryRepo) SetPaymentStatus(_ context.Context, invoiceID int64, status string) error {
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.PaymentStatus = status
	m.invoices[invoiceID] = inv
	return nil
}

func (m *memoryRepo) CreatePayment(_ context.Context, p SupplierPayment) (SupplierPayment, error) {
	p.ID = m.id()
	p.CreatedAt = time.Now()
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *memoryRepo) ListPayments(_ context.Context, supplierID int64) ([]SupplierPayment, error) {
	var out []SupplierPayment
	for _, p := range m.payments {
		if p.SupplierID != nil && *p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) PaidTotal(_ context.Context, invoiceID int64) (float64, error) {
	var total float64
	for _, p := range m.payments {
		if p.InvoiceID != nil && *p.InvoiceID == invoiceID {
			total += p.Amount
		}
	}
	return total, nil
}

type fakeLedger struct {
	posted  []int64
	postErr error
}

func (f *fakeLedger) PostPurchase(_ context.Context, invoiceID int64) (ledger.Entry, error) {
	if f.postErr != nil {
		return ledger.Entry{}, f.postErr
	}
	f.posted = append(f.posted, invoiceID)
	return ledger.Entry{ID: invoiceID}, nil
}

func newTestService(repo Repository, lp LedgerPort) *Service {
	return NewService(repo, lp, nil, slog.New(slog.DiscardHandler))
}

func TestCreateInvoiceTotalsAndStockIn(t *testing.T) {
	repo := newMemoryRepo()
	lp := &fakeLedger{}
	svc := newTestService(repo, lp)

	invoice, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		Items: []InvoiceLineInput{
			{ProductID: 1, Quantity: 10, UnitCost: 2.5},
			{ProductID: 2, Quantity: 4, UnitCost: 10},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 65.0, invoice.TotalAmount, 1e-9)
	assert.Equal(t, PaymentStatusUnpaid, invoice.PaymentStatus)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", invoice.DocumentCode.String())

	require.Len(t, repo.movements, 2)
	assert.InDelta(t, 10.0, repo.movements[0].QuantityChange, 1e-9)
	assert.InDelta(t, 4.0, repo.movements[1].QuantityChange, 1e-9)
	assert.Equal(t, inventory.ReasonPurchase, repo.movements[0].Reason)

	assert.Equal(t, []int64{invoice.ID}, lp.posted)
}

func TestCreateInvoiceRejectsEmpty(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeLedger{})
	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{})
	assert.ErrorIs(t, err, ErrEmptyInvoice)
}

func TestCreateInvoiceSurvivesLedgerFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakeLedger{postErr: errors.New("ledger down")})

	invoice, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		Items: []InvoiceLineInput{{ProductID: 1, Quantity: 1, UnitCost: 5}},
	})
	require.NoError(t, err)
	_, ok := repo.invoices[invoice.ID]
	assert.True(t, ok)
}

func TestRecordPaymentUpdatesStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakeLedger{})

	invoice, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		Items: []InvoiceLineInput{{ProductID: 1, Quantity: 10, UnitCost: 10}},
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), PaymentInput{InvoiceID: &invoice.ID, Amount: 40})
	require.NoError(t, err)
	got, _ := repo.GetInvoice(context.Background(), invoice.ID)
	assert.Equal(t, PaymentStatusPart, got.PaymentStatus)

	_, err = svc.RecordPayment(context.Background(), PaymentInput{InvoiceID: &invoice.ID, Amount: 60})
	require.NoError(t, err)
	got, _ = repo.GetInvoice(context.Background(), invoice.ID)
	assert.Equal(t, PaymentStatusPaid, got.PaymentStatus)

	// Payments annotate the invoice; they never touch the journal.
	assert.Len(t, repo.movements, 1)
}

func TestSupplierValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeLedger{})

	_, err := svc.CreateSupplier(context.Background(), Supplier{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidSupplier)

	sup, err := svc.CreateSupplier(context.Background(), Supplier{Name: "Metro Wholesale"})
	require.NoError(t, err)

	sup.Name = "Metro Wholesale Ltd"
	updated, err := svc.UpdateSupplier(context.Background(), sup)
	require.NoError(t, err)
	assert.Equal(t, "Metro Wholesale Ltd", updated.Name)

	require.NoError(t, svc.DeleteSupplier(context.Background(), sup.ID))
	_, err = svc.GetSupplier(context.Background(), sup.ID)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}
