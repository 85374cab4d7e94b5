package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) EnsureAccount(ctx context.Context, acc Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO ledger_accounts (name, code, type, is_system)
VALUES ($1,$2,$3,$4) ON CONFLICT (name) DO NOTHING`, acc.Name, acc.Code, acc.Type, acc.IsSystem)
	return err
}

func (r *repository) AccountIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM ledger_accounts WHERE name=$1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, type, is_system FROM ledger_accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.Type, &a.IsSystem); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, entry_date, description, entry_kind, reference_kind, reference_id, created_at
FROM ledger_entries ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.Kind, &e.ReferenceKind, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		lines, err := r.linesForEntry(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Lines = lines
	}
	return entries, nil
}

func (r *repository) linesForEntry(ctx context.Context, entryID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `SELECT id, entry_id, account_id, debit, credit
FROM ledger_entry_lines WHERE entry_id=$1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM ledger_entries`).Scan(&s.Entries); err != nil {
		return Stats{}, err
	}
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM ledger_entry_lines`).Scan(&s.Lines); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) SaleDocument(ctx context.Context, orderID int64) (SaleDocument, error) {
	var doc SaleDocument
	doc.OrderID = orderID
	err := r.tx.QueryRow(ctx, `SELECT created_at, total_amount, total_tax FROM pos_orders WHERE id=$1`, orderID).
		Scan(&doc.CreatedAt, &doc.TotalAmount, &doc.TotalTax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleDocument{}, ErrSaleNotFound
		}
		return SaleDocument{}, err
	}

	rows, err := r.tx.Query(ctx, `SELECT poi.product_id, poi.quantity, poi.unit_price, poi.tax_rate, poi.line_total, p.cost_price
FROM pos_order_items poi
JOIN products p ON p.id = poi.product_id
WHERE poi.order_id = $1
ORDER BY poi.id`, orderID)
	if err != nil {
		return SaleDocument{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice, &it.TaxRate, &it.LineTotal, &it.CostPrice); err != nil {
			return SaleDocument{}, err
		}
		doc.Items = append(doc.Items, it)
	}
	return doc, rows.Err()
}

func (r *txRepository) PurchaseDocument(ctx context.Context, invoiceID int64) (PurchaseDocument, error) {
	var doc PurchaseDocument
	doc.InvoiceID = invoiceID
	var number *string
	err := r.tx.QueryRow(ctx, `SELECT invoice_number, invoice_date, created_at, total_amount
FROM purchase_invoices WHERE id=$1`, invoiceID).
		Scan(&number, &doc.InvoiceDate, &doc.CreatedAt, &doc.TotalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseDocument{}, ErrInvoiceNotFound
		}
		return PurchaseDocument{}, err
	}
	if number != nil {
		doc.InvoiceNumber = *number
	}
	return doc, nil
}

func (r *txRepository) EntriesWithLines(ctx context.Context, kind ReferenceKind, refID int64) ([]Entry, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, entry_date, description, entry_kind, reference_kind, reference_id, created_at
FROM ledger_entries WHERE reference_kind=$1 AND reference_id=$2 ORDER BY id`, kind, refID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.Kind, &e.ReferenceKind, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		lineRows, err := r.tx.Query(ctx, `SELECT id, entry_id, account_id, debit, credit
FROM ledger_entry_lines WHERE entry_id=$1 ORDER BY id`, entries[i].ID)
		if err != nil {
			return nil, err
		}
		var lines []Line
		for lineRows.Next() {
			var l Line
			if err := lineRows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit); err != nil {
				lineRows.Close()
				return nil, err
			}
			lines = append(lines, l)
		}
		if err := lineRows.Err(); err != nil {
			lineRows.Close()
			return nil, err
		}
		lineRows.Close()
		entries[i].Lines = lines
	}
	return entries, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries (entry_date, description, entry_kind, reference_kind, reference_id)
VALUES ($1,$2,$3,$4,$5) RETURNING id`, e.Date, e.Description, e.Kind, e.ReferenceKind, e.ReferenceID).Scan(&id)
	return id, err
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) error {
	for _, l := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO ledger_entry_lines (entry_id, account_id, debit, credit)
VALUES ($1,$2,$3,$4)`, entryID, l.AccountID, l.Debit, l.Credit); err != nil {
			return err
		}
	}
	return nil
}
