package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists movements and derives stock levels.
type Repository interface {
	Insert(ctx context.Context, m Movement) (Movement, error)
	InsertTx(ctx context.Context, tx pgx.Tx, m Movement) (Movement, error)
	Stock(ctx context.Context, productID int64) (float64, error)
	StockLevels(ctx context.Context, productIDs []int64) ([]StockLevel, error)
	ListByProduct(ctx context.Context, productID int64, limit int) ([]Movement, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const insertSQL = `INSERT INTO inventory_movements (product_id, quantity_change, reason, reference_kind, reference_id)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`

func (r *repository) Insert(ctx context.Context, m Movement) (Movement, error) {
	err := r.db.QueryRow(ctx, insertSQL,
		m.ProductID, m.QuantityChange, m.Reason, nullString(m.ReferenceKind), nullInt(m.ReferenceID)).
		Scan(&m.ID, &m.CreatedAt)
	return m, err
}

// InsertTx writes a movement inside a caller-owned transaction so document
// creation and its stock effect commit as one unit.
func (r *repository) InsertTx(ctx context.Context, tx pgx.Tx, m Movement) (Movement, error) {
	err := tx.QueryRow(ctx, insertSQL,
		m.ProductID, m.QuantityChange, m.Reason, nullString(m.ReferenceKind), nullInt(m.ReferenceID)).
		Scan(&m.ID, &m.CreatedAt)
	return m, err
}

func (r *repository) Stock(ctx context.Context, productID int64) (float64, error) {
	var stock float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_change), 0)
FROM inventory_movements WHERE product_id=$1`, productID).Scan(&stock)
	return stock, err
}

// StockLevels batches stock derivation for many products in one query.
func (r *repository) StockLevels(ctx context.Context, productIDs []int64) ([]StockLevel, error) {
	rows, err := r.db.Query(ctx, `SELECT product_id, SUM(quantity_change)
FROM inventory_movements WHERE product_id = ANY($1) GROUP BY product_id`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[int64]float64, len(productIDs))
	for rows.Next() {
		var id int64
		var qty float64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		found[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	levels := make([]StockLevel, 0, len(productIDs))
	for _, id := range productIDs {
		levels = append(levels, StockLevel{ProductID: id, Quantity: found[id]})
	}
	return levels, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	rows, err := r.db.Query(ctx, `SELECT id, product_id, quantity_change, reason, COALESCE(reference_kind,''), COALESCE(reference_id,0), created_at
FROM inventory_movements WHERE product_id=$1 ORDER BY id DESC LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.QuantityChange, &m.Reason, &m.ReferenceKind, &m.ReferenceID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
