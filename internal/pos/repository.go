package pos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/platform/db"
)

// Repository persists orders. CreateOrder and MarkVoided each run as a
// single transaction covering the document and its inventory movements; the
// repository fills generated ids into child rows and movement references.
type Repository interface {
	CreateOrder(ctx context.Context, order Order, movements []inventory.Movement) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context, limit int) ([]Order, error)
	Items(ctx context.Context, orderID int64) ([]OrderItem, error)
	Payments(ctx context.Context, orderID int64) ([]Payment, error)
	MarkVoided(ctx context.Context, orderID int64, reason string, movements []inventory.Movement) error
}

type repository struct {
	db        *pgxpool.Pool
	inventory inventory.Repository
}

func NewRepository(pool *pgxpool.Pool, inv inventory.Repository) Repository {
	return &repository{db: pool, inventory: inv}
}

func (r *repository) CreateOrder(ctx context.Context, order Order, movements []inventory.Movement) (Order, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO pos_orders
(receipt_code, created_at, customer_id, customer_name, customer_phone, customer_dob, is_age_verified,
 total_amount, total_tax, payment_method, payment_status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
			order.ReceiptCode, order.CreatedAt, order.CustomerID, order.CustomerName, order.CustomerPhone,
			order.CustomerDOB, order.IsAgeVerified, order.TotalAmount, order.TotalTax,
			order.PaymentMethod, order.PaymentStatus).Scan(&order.ID)
		if err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			it := order.Items[i]
			err := tx.QueryRow(ctx, `INSERT INTO pos_order_items (order_id, product_id, quantity, unit_price, tax_rate, line_total)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
				it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TaxRate, it.LineTotal).Scan(&order.Items[i].ID)
			if err != nil {
				return err
			}
		}

		for i := range order.Payments {
			order.Payments[i].OrderID = order.ID
			p := order.Payments[i]
			err := tx.QueryRow(ctx, `INSERT INTO pos_payments (order_id, payment_method, amount)
VALUES ($1,$2,$3) RETURNING id, created_at`,
				p.OrderID, p.Method, p.Amount).Scan(&order.Payments[i].ID, &order.Payments[i].CreatedAt)
			if err != nil {
				return err
			}
		}

		for _, m := range movements {
			m.ReferenceID = order.ID
			if _, err := r.inventory.InsertTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

const orderColumns = `id, receipt_code, created_at, customer_id, customer_name, customer_phone, customer_dob,
is_age_verified, total_amount, total_tax, COALESCE(payment_method,''), payment_status, voided, void_reason`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ReceiptCode, &o.CreatedAt, &o.CustomerID, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerDOB, &o.IsAgeVerified, &o.TotalAmount, &o.TotalTax, &o.PaymentMethod, &o.PaymentStatus,
		&o.Voided, &o.VoidReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	return scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM pos_orders WHERE id=$1`, id))
}

func (r *repository) List(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM pos_orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `SELECT poi.id, poi.order_id, poi.product_id, p.name, poi.quantity, poi.unit_price, poi.tax_rate, poi.line_total
FROM pos_order_items poi
JOIN products p ON p.id = poi.product_id
WHERE poi.order_id=$1 ORDER BY poi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.TaxRate, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Payments(ctx context.Context, orderID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, payment_method, amount, created_at
FROM pos_payments WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) MarkVoided(ctx context.Context, orderID int64, reason string, movements []inventory.Movement) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `UPDATE pos_orders SET voided=TRUE, payment_status=$2, void_reason=$3 WHERE id=$1`,
			orderID, PaymentStatusVoid, reason)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		for _, m := range movements {
			m.ReferenceID = orderID
			if _, err := r.inventory.InsertTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}
