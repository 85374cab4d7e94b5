package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	pnlCalls int
	pnl      Pnl
	lastFrom time.Time
	lastTo   time.Time
	daily    []DailyRevenue
	top      []TopProduct
}

func (s *stubRepo) PnlBetween(_ context.Context, from, to time.Time) (Pnl, error) {
	s.pnlCalls++
	s.lastFrom, s.lastTo = from, to
	p := s.pnl
	p.From, p.To = from, to
	p.NetProfit = p.Revenue - p.Expenses
	return p, nil
}

func (s *stubRepo) DailyRevenue(context.Context, time.Time, time.Time) ([]DailyRevenue, error) {
	return s.daily, nil
}

func (s *stubRepo) TopProducts(_ context.Context, _, _ time.Time, limit int) ([]TopProduct, error) {
	if limit < len(s.top) {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPnlSignConvention(t *testing.T) {
	// A sale posting of 100 net revenue and 30 cost leaves INCOME with a
	// 100 credit balance and EXPENSE with a 30 debit balance.
	pnl := pnlFromBalances(date(2025, 3, 1), date(2025, 3, 31), map[string]float64{
		"INCOME":  -100,
		"EXPENSE": 30,
	})
	assert.InDelta(t, 100.0, pnl.Revenue, 1e-9)
	assert.InDelta(t, 30.0, pnl.Expenses, 1e-9)
	assert.InDelta(t, 70.0, pnl.NetProfit, 1e-9)
}

func TestPnlEmptyRangeIsZero(t *testing.T) {
	pnl := pnlFromBalances(date(2025, 3, 1), date(2025, 3, 31), map[string]float64{})
	assert.Zero(t, pnl.Revenue)
	assert.Zero(t, pnl.Expenses)
	assert.Zero(t, pnl.NetProfit)
}

func TestCompareUsesPrecedingPeriodOfEqualLength(t *testing.T) {
	repo := &stubRepo{pnl: Pnl{Revenue: 10}}
	svc := NewService(repo, nil)

	cmp, err := svc.Compare(context.Background(), date(2025, 3, 8), date(2025, 3, 14))
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 8), cmp.Current.From)
	assert.Equal(t, date(2025, 3, 7), cmp.Previous.To)
	assert.Equal(t, date(2025, 3, 1), cmp.Previous.From)
}

func TestCacheServesUntilBumped(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := &stubRepo{pnl: Pnl{Revenue: 50}}
	svc := NewService(repo, cache)
	ctx := context.Background()
	from, to := date(2025, 3, 1), date(2025, 3, 31)

	_, err := svc.Pnl(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.Pnl(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.pnlCalls, "second read should hit the cache")

	require.NoError(t, svc.Bump(ctx))

	_, err = svc.Pnl(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.pnlCalls, "bump should orphan the cached report")
}

func TestTopProductsDefaultsLimit(t *testing.T) {
	repo := &stubRepo{top: []TopProduct{{ProductID: 1, Name: "Cola", Quantity: 12, NetRevenue: 22, Revenue: 24}}}
	svc := NewService(repo, nil)

	out, err := svc.TopProducts(context.Background(), date(2025, 3, 1), date(2025, 3, 31), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Cola", out[0].Name)
}

func TestTopProductsCachesPerLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := &stubRepo{top: []TopProduct{
		{ProductID: 1, Name: "Cola", NetRevenue: 50},
		{ProductID: 2, Name: "Chips", NetRevenue: 40},
		{ProductID: 3, Name: "Milk", NetRevenue: 30},
		{ProductID: 4, Name: "Bread", NetRevenue: 20},
		{ProductID: 5, Name: "Cigarettes", NetRevenue: 10},
	}}
	svc := NewService(repo, cache)
	ctx := context.Background()
	from, to := date(2025, 3, 1), date(2025, 3, 31)

	out, err := svc.TopProducts(ctx, from, to, 5)
	require.NoError(t, err)
	require.Len(t, out, 5)

	out, err = svc.TopProducts(ctx, from, to, 2)
	require.NoError(t, err)
	require.Len(t, out, 2, "a smaller limit must not reuse the wider result")
	assert.Equal(t, "Cola", out[0].Name)
	assert.Equal(t, "Chips", out[1].Name)
}

func TestReportRangesSnapToCalendarDays(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := &stubRepo{pnl: Pnl{Revenue: 50}}
	svc := NewService(repo, cache)
	ctx := context.Background()

	// A warmup pass queries with full timestamps, a handler with midnight
	// bounds. Both must mean the same whole days and share one cache entry.
	_, err := svc.Pnl(ctx,
		time.Date(2025, 3, 1, 13, 45, 12, 0, time.UTC),
		time.Date(2025, 3, 31, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 1), repo.lastFrom)
	assert.Equal(t, date(2025, 3, 31), repo.lastTo)

	_, err = svc.Pnl(ctx, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.pnlCalls, "midnight range should hit the warmed entry")
}
