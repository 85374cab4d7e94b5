package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates reporting figures. P&L reads the journal; sales
// volume reads the order tables directly, so voided orders still show in
// the register counts while their ledger reversal zeroes the books.
type Repository interface {
	PnlBetween(ctx context.Context, from, to time.Time) (Pnl, error)
	DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) PnlBetween(ctx context.Context, from, to time.Time) (Pnl, error) {
	rows, err := r.db.Query(ctx, `SELECT a.type, SUM(l.debit - l.credit)
FROM ledger_entry_lines l
JOIN ledger_entries e ON e.id = l.entry_id
JOIN ledger_accounts a ON a.id = l.account_id
WHERE e.entry_date BETWEEN $1 AND $2 AND a.type IN ('INCOME', 'EXPENSE')
GROUP BY a.type`, from, to)
	if err != nil {
		return Pnl{}, err
	}
	defer rows.Close()
	balances := make(map[string]float64)
	for rows.Next() {
		var accountType string
		var balance float64
		if err := rows.Scan(&accountType, &balance); err != nil {
			return Pnl{}, err
		}
		balances[accountType] = balance
	}
	if err := rows.Err(); err != nil {
		return Pnl{}, err
	}
	return pnlFromBalances(from, to, balances), nil
}

func (r *repository) DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error) {
	rows, err := r.db.Query(ctx, `SELECT o.created_at::date AS day,
COUNT(DISTINCT o.id),
COALESCE(SUM(poi.quantity * poi.unit_price), 0),
COALESCE(SUM(poi.line_total - poi.quantity * poi.unit_price), 0),
COALESCE(SUM(poi.line_total), 0)
FROM pos_orders o
JOIN pos_order_items poi ON poi.order_id = o.id
WHERE o.created_at::date BETWEEN $1 AND $2
GROUP BY day
ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Date, &d.Orders, &d.NetRevenue, &d.Tax, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT poi.product_id, p.name,
SUM(poi.quantity),
SUM(poi.quantity * poi.unit_price) AS net_revenue,
SUM(poi.line_total)
FROM pos_order_items poi
JOIN pos_orders o ON o.id = poi.order_id
JOIN products p ON p.id = poi.product_id
WHERE o.created_at::date BETWEEN $1 AND $2
GROUP BY poi.product_id, p.name
ORDER BY net_revenue DESC
LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.Name, &t.Quantity, &t.NetRevenue, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
