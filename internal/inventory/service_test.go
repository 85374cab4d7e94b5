package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	movements []Movement
	nextID    int64
}

func (r *memoryRepo) Insert(ctx context.Context, m Movement) (Movement, error) {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, m)
	return m, nil
}

func (r *memoryRepo) InsertTx(ctx context.Context, tx pgx.Tx, m Movement) (Movement, error) {
	return r.Insert(ctx, m)
}

func (r *memoryRepo) Stock(ctx context.Context, productID int64) (float64, error) {
	var sum float64
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.QuantityChange
		}
	}
	return sum, nil
}

func (r *memoryRepo) StockLevels(ctx context.Context, productIDs []int64) ([]StockLevel, error) {
	levels := make([]StockLevel, 0, len(productIDs))
	for _, id := range productIDs {
		qty, _ := r.Stock(ctx, id)
		levels = append(levels, StockLevel{ProductID: id, Quantity: qty})
	}
	return levels, nil
}

func (r *memoryRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	var out []Movement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.movements[i].ProductID == productID {
			out = append(out, r.movements[i])
		}
	}
	return out, nil
}

func TestStockIsSumOfMovements(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	// Mixed purchase/sale/void/manual history.
	changes := []struct {
		qty    float64
		reason Reason
	}{
		{10, ReasonPurchase},
		{-3, ReasonSale},
		{-4, ReasonSale},
		{3, ReasonVoid},
		{-1.5, ReasonAdjustment},
	}
	var want float64
	for _, c := range changes {
		_, err := svc.Record(ctx, Movement{ProductID: 42, QuantityChange: c.qty, Reason: c.reason})
		require.NoError(t, err)
		want += c.qty
	}

	got, err := svc.Stock(ctx, 42)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestStockAllowsNegative(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	// Overselling is not blocked at this layer.
	_, err := svc.Record(ctx, Movement{ProductID: 1, QuantityChange: -5, Reason: ReasonSale})
	require.NoError(t, err)

	got, err := svc.Stock(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, -5, got, 1e-9)
}

func TestStockDefaultsToZero(t *testing.T) {
	svc := NewService(&memoryRepo{})

	got, err := svc.Stock(context.Background(), 999)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestRecordRejectsZeroQuantity(t *testing.T) {
	svc := NewService(&memoryRepo{})

	_, err := svc.Record(context.Background(), Movement{ProductID: 1, QuantityChange: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStockLevelsBatch(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Record(ctx, Movement{ProductID: 1, QuantityChange: 4, Reason: ReasonPurchase})
	require.NoError(t, err)
	_, err = svc.Record(ctx, Movement{ProductID: 2, QuantityChange: 7, Reason: ReasonPurchase})
	require.NoError(t, err)

	levels, err := svc.StockLevels(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.InDelta(t, 4, levels[0].Quantity, 1e-9)
	assert.InDelta(t, 7, levels[1].Quantity, 1e-9)
	assert.Zero(t, levels[2].Quantity)
}
