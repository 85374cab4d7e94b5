package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, id int64, u ProductUpdate) (Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, sku, barcode, price, cost_price, category, tax_rate, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Price, &p.CostPrice, &p.Category, &p.TaxRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO products (name, sku, barcode, price, cost_price, category, tax_rate, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+productColumns,
		p.Name, p.SKU, p.Barcode, p.Price, p.CostPrice, p.Category, p.TaxRate, p.IsActive)
	return scanProduct(row)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	if activeOnly {
		query = `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY name`
	}
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update applies only the fields present in the ProductUpdate. COALESCE
// keeps the stored value when the corresponding parameter is NULL.
func (r *repository) Update(ctx context.Context, id int64, u ProductUpdate) (Product, error) {
	row := r.db.QueryRow(ctx, `UPDATE products SET
name = COALESCE($2, name),
sku = COALESCE($3, sku),
barcode = COALESCE($4, barcode),
price = COALESCE($5, price),
cost_price = COALESCE($6, cost_price),
category = COALESCE($7, category),
tax_rate = COALESCE($8, tax_rate),
is_active = COALESCE($9, is_active),
updated_at = NOW()
WHERE id=$1 RETURNING `+productColumns,
		id, u.Name, u.SKU, u.Barcode, u.Price, u.CostPrice, u.Category, u.TaxRate, u.IsActive)
	return scanProduct(row)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
