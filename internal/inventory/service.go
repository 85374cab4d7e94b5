package inventory

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"
)

// Service coordinates the movement log. Negative stock is permitted here:
// the layer records what happened, it does not police overselling. UI-level
// quantity caps are advisory only.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one immutable movement row.
func (s *Service) Record(ctx context.Context, m Movement) (Movement, error) {
	if math.Abs(m.QuantityChange) < 1e-9 {
		return Movement{}, ErrInvalidQuantity
	}
	return s.repo.Insert(ctx, m)
}

// RecordTx appends a movement inside the caller's transaction.
func (s *Service) RecordTx(ctx context.Context, tx pgx.Tx, m Movement) (Movement, error) {
	if math.Abs(m.QuantityChange) < 1e-9 {
		return Movement{}, ErrInvalidQuantity
	}
	return s.repo.InsertTx(ctx, tx, m)
}

// Stock returns the sum of quantity changes for a product; zero when the
// product has no movements.
func (s *Service) Stock(ctx context.Context, productID int64) (float64, error) {
	return s.repo.Stock(ctx, productID)
}

// StockLevels derives stock for many products at once. Callers that need
// lots of lookups should prefer this over repeated Stock calls.
func (s *Service) StockLevels(ctx context.Context, productIDs []int64) ([]StockLevel, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	return s.repo.StockLevels(ctx, productIDs)
}

// History lists a product's movements, newest first.
func (s *Service) History(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByProduct(ctx, productID, limit)
}
