package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	accounts      map[string]Account
	nextAccountID int64
	entries       []Entry
	nextEntryID   int64
	sales         map[int64]SaleDocument
	purchases     map[int64]PurchaseDocument
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		accounts:  make(map[string]Account),
		sales:     make(map[int64]SaleDocument),
		purchases: make(map[int64]PurchaseDocument),
	}
}

func (m *mockRepo) EnsureAccount(ctx context.Context, acc Account) error {
	if _, ok := m.accounts[acc.Name]; ok {
		return nil
	}
	m.nextAccountID++
	acc.ID = m.nextAccountID
	m.accounts[acc.Name] = acc
	return nil
}

func (m *mockRepo) AccountIDByName(ctx context.Context, name string) (int64, error) {
	acc, ok := m.accounts[name]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return acc.ID, nil
}

func (m *mockRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	out := make([]Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		out = append(out, acc)
	}
	return out, nil
}

func (m *mockRepo) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockRepo) Stats(ctx context.Context) (Stats, error) {
	var lines int64
	for _, e := range m.entries {
		lines += int64(len(e.Lines))
	}
	return Stats{Entries: int64(len(m.entries)), Lines: lines}, nil
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &mockTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.entries = append(m.entries, tx.staged...)
	return nil
}

type mockTx struct {
	repo   *mockRepo
	staged []Entry
}

func (t *mockTx) SaleDocument(ctx context.Context, orderID int64) (SaleDocument, error) {
	doc, ok := t.repo.sales[orderID]
	if !ok {
		return SaleDocument{}, ErrSaleNotFound
	}
	return doc, nil
}

func (t *mockTx) PurchaseDocument(ctx context.Context, invoiceID int64) (PurchaseDocument, error) {
	doc, ok := t.repo.purchases[invoiceID]
	if !ok {
		return PurchaseDocument{}, ErrInvoiceNotFound
	}
	return doc, nil
}

func (t *mockTx) EntriesWithLines(ctx context.Context, kind ReferenceKind, refID int64) ([]Entry, error) {
	var out []Entry
	for _, e := range t.repo.entries {
		if e.ReferenceKind == kind && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *mockTx) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	t.repo.nextEntryID++
	e.ID = t.repo.nextEntryID
	t.staged = append(t.staged, e)
	return e.ID, nil
}

func (t *mockTx) InsertLines(ctx context.Context, entryID int64, lines []Line) error {
	for i := range t.staged {
		if t.staged[i].ID == entryID {
			for _, l := range lines {
				l.EntryID = entryID
				t.staged[i].Lines = append(t.staged[i].Lines, l)
			}
			return nil
		}
	}
	return nil
}

func newTestService(t *testing.T, repo *mockRepo) *Service {
	t.Helper()
	svc := NewService(repo, nil)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc
}

func floatPtr(v float64) *float64 { return &v }

func TestBootstrapIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Bootstrap(ctx))
	}

	require.Len(t, repo.accounts, 5)
	set := svc.AccountIDs()
	assert.NotZero(t, set.Cash)
	assert.NotZero(t, set.Inventory)
	assert.NotZero(t, set.COGS)
	assert.NotZero(t, set.SalesRevenue)
	assert.NotZero(t, set.TaxPayable)
}

func TestPostSaleProducesBalancedEntry(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	set := svc.AccountIDs()

	// One line: cost 2.00, price 10.00, qty 3, tax 10% => total 33.00, tax 3.00.
	repo.sales[7] = SaleDocument{
		OrderID:     7,
		CreatedAt:   time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC),
		TotalAmount: 33.00,
		TotalTax:    3.00,
		Items: []SaleItem{
			{ProductID: 1, Quantity: 3, UnitPrice: 10.00, TaxRate: 10, LineTotal: 33.00, CostPrice: floatPtr(2.00)},
		},
	}

	entry, err := svc.PostSale(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, EntryKindSale, entry.Kind)
	require.Equal(t, ReferencePOSOrder, entry.ReferenceKind)
	require.Equal(t, int64(7), entry.ReferenceID)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), entry.Date)
	require.Len(t, entry.Lines, 5)

	byAccount := map[int64]Line{}
	for _, l := range entry.Lines {
		byAccount[l.AccountID] = l
	}
	assert.InDelta(t, 33.00, byAccount[set.Cash].Debit, 1e-9)
	assert.InDelta(t, 30.00, byAccount[set.SalesRevenue].Credit, 1e-9)
	assert.InDelta(t, 3.00, byAccount[set.TaxPayable].Credit, 1e-9)
	assert.InDelta(t, 6.00, byAccount[set.COGS].Debit, 1e-9)
	assert.InDelta(t, 6.00, byAccount[set.Inventory].Credit, 1e-9)

	var debit, credit float64
	for _, l := range entry.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	assert.InDelta(t, debit, credit, 1e-9)
}

func TestPostSaleSkipsUnknownCost(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)
	set := svc.AccountIDs()

	repo.sales[3] = SaleDocument{
		OrderID:     3,
		CreatedAt:   time.Now(),
		TotalAmount: 10.00,
		TotalTax:    0,
		Items: []SaleItem{
			{ProductID: 9, Quantity: 1, UnitPrice: 10.00, LineTotal: 10.00, CostPrice: nil},
		},
	}

	entry, err := svc.PostSale(context.Background(), 3)
	require.NoError(t, err)
	// No tax, no COGS pair: just cash against revenue.
	require.Len(t, entry.Lines, 2)
	for _, l := range entry.Lines {
		assert.NotEqual(t, set.COGS, l.AccountID)
		assert.NotEqual(t, set.Inventory, l.AccountID)
		assert.NotEqual(t, set.TaxPayable, l.AccountID)
	}
}

func TestPostSaleOrderNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	_, err := svc.PostSale(context.Background(), 404)
	require.ErrorIs(t, err, ErrSaleNotFound)
	assert.Empty(t, repo.entries)
}

func TestPostSaleUnbalancedSnapshotAborted(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	// Stored total drifted from its line items: posting must abort rather
	// than commit an unbalanced entry.
	repo.sales[11] = SaleDocument{
		OrderID:     11,
		CreatedAt:   time.Now(),
		TotalAmount: 99.00,
		TotalTax:    0,
		Items: []SaleItem{
			{ProductID: 1, Quantity: 1, UnitPrice: 10.00, LineTotal: 10.00},
		},
	}

	_, err := svc.PostSale(context.Background(), 11)
	require.ErrorIs(t, err, ErrUnbalanced)
	assert.Empty(t, repo.entries)
}

func TestVoidSaleReversesEveryLine(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	repo.sales[7] = SaleDocument{
		OrderID:     7,
		CreatedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		TotalAmount: 33.00,
		TotalTax:    3.00,
		Items: []SaleItem{
			{ProductID: 1, Quantity: 3, UnitPrice: 10.00, TaxRate: 10, LineTotal: 33.00, CostPrice: floatPtr(2.00)},
		},
	}
	original, err := svc.PostSale(ctx, 7)
	require.NoError(t, err)

	reversals, err := svc.VoidSale(ctx, 7, "till error")
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	rev := reversals[0]

	assert.Equal(t, EntryKindVoidSale, rev.Kind)
	assert.Equal(t, ReferencePOSOrderVoid, rev.ReferenceKind)
	assert.Equal(t, original.Date, rev.Date)
	assert.Equal(t, "VOID POS Sale #7 (Reason: till error)", rev.Description)
	require.Len(t, rev.Lines, len(original.Lines))

	for i, l := range rev.Lines {
		assert.Equal(t, original.Lines[i].AccountID, l.AccountID)
		assert.InDelta(t, original.Lines[i].Credit, l.Debit, 1e-9)
		assert.InDelta(t, original.Lines[i].Debit, l.Credit, 1e-9)
	}

	// Net ledger effect across both entries is zero per account.
	net := map[int64]float64{}
	for _, e := range [][]Line{original.Lines, rev.Lines} {
		for _, l := range e {
			net[l.AccountID] += l.Debit - l.Credit
		}
	}
	for accountID, balance := range net {
		assert.InDelta(t, 0, balance, 1e-9, "account %d", accountID)
	}

	// Originals are untouched.
	assert.Equal(t, EntryKindSale, repo.entries[0].Kind)
}

func TestVoidSaleWithoutEntriesIsNoop(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	reversals, err := svc.VoidSale(context.Background(), 123, "legacy order")
	require.NoError(t, err)
	assert.Empty(t, reversals)
	assert.Empty(t, repo.entries)
}

func TestPostPurchase(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)
	set := svc.AccountIDs()

	invoiceDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo.purchases[5] = PurchaseDocument{
		InvoiceID:     5,
		InvoiceNumber: "PI-0042",
		InvoiceDate:   &invoiceDate,
		CreatedAt:     time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
		TotalAmount:   20.00,
	}

	entry, err := svc.PostPurchase(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, EntryKindPurchase, entry.Kind)
	assert.Equal(t, "Purchase Invoice #PI-0042", entry.Description)
	assert.Equal(t, invoiceDate, entry.Date)
	require.Len(t, entry.Lines, 2)

	byAccount := map[int64]Line{}
	for _, l := range entry.Lines {
		byAccount[l.AccountID] = l
	}
	assert.InDelta(t, 20.00, byAccount[set.Inventory].Debit, 1e-9)
	assert.InDelta(t, 20.00, byAccount[set.Cash].Credit, 1e-9)
}

func TestPostPurchaseDateFallsBackToCreation(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	repo.purchases[6] = PurchaseDocument{
		InvoiceID:   6,
		CreatedAt:   time.Date(2026, 2, 3, 23, 30, 0, 0, time.UTC),
		TotalAmount: 5,
	}

	entry, err := svc.PostPurchase(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, "Purchase Invoice #6", entry.Description)
}

func TestPostPurchaseInvoiceNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	_, err := svc.PostPurchase(context.Background(), 404)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
