package reports

import (
	"context"
	"strconv"
	"time"
)

// Service is the reporting facade: each report goes through the versioned
// cache and falls back to the repository on a miss.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Pnl returns the profit & loss summary for [from, to].
func (s *Service) Pnl(ctx context.Context, from, to time.Time) (Pnl, error) {
	from, to = midnight(from), midnight(to)
	key, err := s.cache.BuildKey(ctx, "reports", "pnl", day(from), day(to))
	if err != nil {
		return Pnl{}, err
	}
	var pnl Pnl
	err = s.cache.FetchJSON(ctx, key, &pnl, func(ctx context.Context) (any, error) {
		return s.repo.PnlBetween(ctx, from, to)
	})
	return pnl, err
}

// DailyRevenue returns per-day order volume for [from, to].
func (s *Service) DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error) {
	from, to = midnight(from), midnight(to)
	key, err := s.cache.BuildKey(ctx, "reports", "daily", day(from), day(to))
	if err != nil {
		return nil, err
	}
	var out []DailyRevenue
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.DailyRevenue(ctx, from, to)
	})
	return out, err
}

// TopProducts ranks products by net revenue in [from, to].
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	from, to = midnight(from), midnight(to)
	key, err := s.cache.BuildKey(ctx, "reports", "top", day(from), day(to), strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	var out []TopProduct
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.TopProducts(ctx, from, to, limit)
	})
	return out, err
}

// Compare sets the period's P&L against the preceding period of equal
// length, ending the day before the current one starts.
func (s *Service) Compare(ctx context.Context, from, to time.Time) (PeriodComparison, error) {
	from, to = midnight(from), midnight(to)
	current, err := s.Pnl(ctx, from, to)
	if err != nil {
		return PeriodComparison{}, err
	}
	span := to.Sub(from)
	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.Add(-span)
	previous, err := s.Pnl(ctx, prevFrom, prevTo)
	if err != nil {
		return PeriodComparison{}, err
	}
	return PeriodComparison{Current: current, Previous: previous}, nil
}

// Bump invalidates cached reports after posting activity.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

// midnight drops the time of day so a range always means whole calendar
// days, whatever timestamp the caller passed. Without it, two requests
// for the same days could carry different instants, hit the same cache
// key, and scan different rows.
func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
