package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Repository encapsulates DB operations for the ledger.
type Repository interface {
	EnsureAccount(ctx context.Context, acc Account) error
	AccountIDByName(ctx context.Context, name string) (int64, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	ListEntries(ctx context.Context, limit int) ([]Entry, error)
	Stats(ctx context.Context) (Stats, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes operations available within a posting transaction.
type TxRepository interface {
	SaleDocument(ctx context.Context, orderID int64) (SaleDocument, error)
	PurchaseDocument(ctx context.Context, invoiceID int64) (PurchaseDocument, error)
	EntriesWithLines(ctx context.Context, kind ReferenceKind, refID int64) ([]Entry, error)
	InsertEntry(ctx context.Context, e Entry) (int64, error)
	InsertLines(ctx context.Context, entryID int64, lines []Line) error
}

// Service owns double-entry posting. All postings run inside a single
// transaction and are checked for balance before commit. Postings are not
// idempotent: callers invoke them exactly once, right after committing the
// originating document.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	accounts AccountSet
	now      func() time.Time
}

// NewService builds the ledger Service. Call Bootstrap before posting.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Bootstrap idempotently creates the system accounts and resolves their ids
// into the typed AccountSet used by every posting.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.EnsureDefaultAccounts(ctx); err != nil {
		return err
	}
	set, err := s.resolveAccounts(ctx)
	if err != nil {
		return err
	}
	s.accounts = set
	return nil
}

// EnsureDefaultAccounts creates the fixed chart of accounts if missing.
// Safe to call repeatedly.
func (s *Service) EnsureDefaultAccounts(ctx context.Context) error {
	for _, acc := range systemAccounts {
		if err := s.repo.EnsureAccount(ctx, acc); err != nil {
			return fmt.Errorf("ledger: ensure account %s: %w", acc.Name, err)
		}
	}
	return nil
}

func (s *Service) resolveAccounts(ctx context.Context) (AccountSet, error) {
	var set AccountSet
	for _, target := range []struct {
		name string
		dst  *int64
	}{
		{AccountCash, &set.Cash},
		{AccountInventory, &set.Inventory},
		{AccountCOGS, &set.COGS},
		{AccountSalesRevenue, &set.SalesRevenue},
		{AccountTaxPayable, &set.TaxPayable},
	} {
		id, err := s.repo.AccountIDByName(ctx, target.name)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("system account missing, was Bootstrap run?",
					slog.String("account", target.name), slog.Any("error", err))
			}
			return AccountSet{}, err
		}
		*target.dst = id
	}
	return set, nil
}

// AccountIDs returns the resolved system account ids.
func (s *Service) AccountIDs() AccountSet {
	return s.accounts
}

// Accounts lists the chart of accounts.
func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Entries lists recent entries with their lines, newest first.
func (s *Service) Entries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListEntries(ctx, limit)
}

// LedgerStats returns entry and line counts.
func (s *Service) LedgerStats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// PostSale creates the double-entry record for a completed sale:
//
//	Debit  Cash           total amount
//	Credit Sales Revenue  net of tax
//	Credit Tax Payable    tax (when > 0)
//	Debit  COGS           cost of goods (when > 0)
//	Credit Inventory      cost of goods (matched pair with COGS)
//
// Totals come from the order snapshot; net revenue and COGS are recomputed
// from line items. Lines missing a cost price contribute zero COGS.
func (s *Service) PostSale(ctx context.Context, orderID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.SaleDocument(ctx, orderID)
		if err != nil {
			return err
		}

		var netRevenue, cogs float64
		for _, it := range doc.Items {
			netRevenue += it.Quantity * it.UnitPrice
			if it.CostPrice != nil {
				cogs += it.Quantity * *it.CostPrice
			}
		}

		entry = Entry{
			Date:          s.entryDate(doc.CreatedAt),
			Description:   fmt.Sprintf("POS Sale #%d", orderID),
			Kind:          EntryKindSale,
			ReferenceKind: ReferencePOSOrder,
			ReferenceID:   orderID,
		}

		lines := []Line{
			{AccountID: s.accounts.Cash, Debit: doc.TotalAmount},
			{AccountID: s.accounts.SalesRevenue, Credit: netRevenue},
		}
		if doc.TotalTax > 0 {
			lines = append(lines, Line{AccountID: s.accounts.TaxPayable, Credit: doc.TotalTax})
		}
		if cogs > 0 {
			lines = append(lines,
				Line{AccountID: s.accounts.COGS, Debit: cogs},
				Line{AccountID: s.accounts.Inventory, Credit: cogs},
			)
		}

		var insertErr error
		entry, insertErr = s.insertBalanced(ctx, tx, entry, lines)
		return insertErr
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// VoidSale reverses every prior SALE entry referencing the order by posting a
// new VOID_SALE entry whose lines are the exact debit/credit swap of the
// original. Orders with no posted entries are a no-op, so legacy or unposted
// orders can still be voided. The original entries are never altered.
func (s *Service) VoidSale(ctx context.Context, orderID int64, reason string) ([]Entry, error) {
	var reversals []Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		originals, err := tx.EntriesWithLines(ctx, ReferencePOSOrder, orderID)
		if err != nil {
			return err
		}
		if len(originals) == 0 {
			return nil
		}

		for _, orig := range originals {
			desc := "VOID " + orig.Description
			if reason != "" {
				desc += fmt.Sprintf(" (Reason: %s)", reason)
			}
			reversal := Entry{
				Date:          orig.Date,
				Description:   desc,
				Kind:          EntryKindVoidSale,
				ReferenceKind: ReferencePOSOrderVoid,
				ReferenceID:   orderID,
			}
			inserted, err := s.insertBalanced(ctx, tx, reversal, reverseLines(orig.Lines))
			if err != nil {
				return err
			}
			reversals = append(reversals, inserted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reversals, nil
}

// PostPurchase records a cash-basis purchase:
//
//	Debit  Inventory  total amount
//	Credit Cash       total amount
//
// Payment status on the invoice is a label with no ledger effect.
func (s *Service) PostPurchase(ctx context.Context, invoiceID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.PurchaseDocument(ctx, invoiceID)
		if err != nil {
			return err
		}

		number := doc.InvoiceNumber
		if number == "" {
			number = fmt.Sprintf("%d", invoiceID)
		}
		date := doc.CreatedAt
		if doc.InvoiceDate != nil {
			date = *doc.InvoiceDate
		}

		entry = Entry{
			Date:          s.entryDate(date),
			Description:   fmt.Sprintf("Purchase Invoice #%s", number),
			Kind:          EntryKindPurchase,
			ReferenceKind: ReferencePurchaseInvoice,
			ReferenceID:   invoiceID,
		}
		lines := []Line{
			{AccountID: s.accounts.Inventory, Debit: doc.TotalAmount},
			{AccountID: s.accounts.Cash, Credit: doc.TotalAmount},
		}

		var insertErr error
		entry, insertErr = s.insertBalanced(ctx, tx, entry, lines)
		return insertErr
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// insertBalanced asserts the balance invariant and writes the entry plus its
// lines. Any future change to line emission goes through here, so an
// unbalanced construction aborts the transaction instead of corrupting
// reporting.
func (s *Service) insertBalanced(ctx context.Context, tx TxRepository, entry Entry, lines []Line) (Entry, error) {
	if err := assertBalanced(lines); err != nil {
		return Entry{}, err
	}
	id, err := tx.InsertEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	if err := tx.InsertLines(ctx, id, lines); err != nil {
		return Entry{}, err
	}
	entry.ID = id
	entry.Lines = make([]Line, len(lines))
	copy(entry.Lines, lines)
	for i := range entry.Lines {
		entry.Lines[i].EntryID = id
	}
	return entry, nil
}

func (s *Service) entryDate(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertBalanced(lines []Line) error {
	var debit, credit float64
	for _, l := range lines {
		if l.Debit < 0 || l.Credit < 0 {
			return ErrUnbalanced
		}
		debit += l.Debit
		credit += l.Credit
	}
	if math.Abs(debit-credit) > balanceTolerance {
		return ErrUnbalanced
	}
	return nil
}

func reverseLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{AccountID: l.AccountID, Debit: l.Credit, Credit: l.Debit})
	}
	return out
}
