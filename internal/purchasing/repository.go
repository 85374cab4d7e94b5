package purchasing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/platform/db"
)

// Repository persists suppliers, invoices, and supplier payments.
// CreateInvoice writes the invoice, its items, and its stock-in movements
// as a single transaction.
type Repository interface {
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	CreateInvoice(ctx context.Context, inv Invoice, movements []inventory.Movement) (Invoice, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	ListInvoices(ctx context.Context, limit int) ([]Invoice, error)
	InvoiceItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error)
	SetPaymentStatus(ctx context.Context, invoiceID int64, status string) error

	CreatePayment(ctx context.Context, p SupplierPayment) (SupplierPayment, error)
	ListPayments(ctx context.Context, supplierID int64) ([]SupplierPayment, error)
	PaidTotal(ctx context.Context, invoiceID int64) (float64, error)
}

type repository struct {
	db        *pgxpool.Pool
	inventory inventory.Repository
}

func NewRepository(pool *pgxpool.Pool, inv inventory.Repository) Repository {
	return &repository{db: pool, inventory: inv}
}

func (r *repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO suppliers (name, contact, phone, email, notes)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		s.Name, s.Contact, s.Phone, s.Email, s.Notes).Scan(&s.ID, &s.CreatedAt)
	return s, err
}

const supplierColumns = `id, name, contact, phone, email, notes, created_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrSupplierNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, id))
}

func (r *repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var suppliers []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *repository) UpdateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `UPDATE suppliers
SET name=$2, contact=$3, phone=$4, email=$5, notes=$6
WHERE id=$1
RETURNING `+supplierColumns, s.ID, s.Name, s.Contact, s.Phone, s.Email, s.Notes))
}

func (r *repository) DeleteSupplier(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

func (r *repository) CreateInvoice(ctx context.Context, inv Invoice, movements []inventory.Movement) (Invoice, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO purchase_invoices
(document_code, supplier_id, invoice_number, invoice_date, total_amount, payment_status, payment_method, due_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
			inv.DocumentCode, inv.SupplierID, inv.InvoiceNumber, inv.InvoiceDate,
			inv.TotalAmount, inv.PaymentStatus, inv.PaymentMethod, inv.DueDate).Scan(&inv.ID, &inv.CreatedAt)
		if err != nil {
			return err
		}

		for i := range inv.Items {
			inv.Items[i].InvoiceID = inv.ID
			it := inv.Items[i]
			err := tx.QueryRow(ctx, `INSERT INTO purchase_invoice_items (invoice_id, product_id, quantity, unit_cost, line_total)
VALUES ($1,$2,$3,$4,$5) RETURNING id`,
				it.InvoiceID, it.ProductID, it.Quantity, it.UnitCost, it.LineTotal).Scan(&inv.Items[i].ID)
			if err != nil {
				return err
			}
		}

		for _, m := range movements {
			m.ReferenceID = inv.ID
			if _, err := r.inventory.InsertTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

const invoiceColumns = `id, document_code, supplier_id, invoice_number, invoice_date, total_amount,
payment_status, payment_method, due_date, created_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.DocumentCode, &inv.SupplierID, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.TotalAmount, &inv.PaymentStatus, &inv.PaymentMethod, &inv.DueDate, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM purchase_invoices WHERE id=$1`, id))
}

func (r *repository) ListInvoices(ctx context.Context, limit int) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM purchase_invoices ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *repository) InvoiceItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, invoice_id, product_id, quantity, unit_cost, line_total
FROM purchase_invoice_items WHERE invoice_id=$1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) SetPaymentStatus(ctx context.Context, invoiceID int64, status string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE purchase_invoices SET payment_status=$2 WHERE id=$1`, invoiceID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, p SupplierPayment) (SupplierPayment, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO supplier_payments (supplier_id, invoice_id, payment_date, amount, method, reference)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		p.SupplierID, p.InvoiceID, p.PaymentDate, p.Amount, p.Method, p.Reference).Scan(&p.ID, &p.CreatedAt)
	return p, err
}

func (r *repository) ListPayments(ctx context.Context, supplierID int64) ([]SupplierPayment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, supplier_id, invoice_id, payment_date, amount, method, reference, created_at
FROM supplier_payments WHERE supplier_id=$1 ORDER BY created_at DESC`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []SupplierPayment
	for rows.Next() {
		var p SupplierPayment
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.InvoiceID, &p.PaymentDate, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) PaidTotal(ctx context.Context, invoiceID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM supplier_payments WHERE invoice_id=$1`, invoiceID).Scan(&total)
	return total, err
}
