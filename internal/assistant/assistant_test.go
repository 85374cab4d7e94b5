package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vunnam-pos/vunnam-pos/internal/reports"
)

type stubReports struct{}

func (stubReports) Pnl(_ context.Context, from, to time.Time) (reports.Pnl, error) {
	return reports.Pnl{From: from, To: to, Revenue: 1200, Expenses: 400, NetProfit: 800}, nil
}

func (s stubReports) Compare(ctx context.Context, from, to time.Time) (reports.PeriodComparison, error) {
	cur, _ := s.Pnl(ctx, from, to)
	prev := reports.Pnl{From: from.AddDate(0, 0, -31), To: from.AddDate(0, 0, -1), Revenue: 1000, Expenses: 500, NetProfit: 500}
	return reports.PeriodComparison{Current: cur, Previous: prev}, nil
}

func (stubReports) DailyRevenue(context.Context, time.Time, time.Time) ([]reports.DailyRevenue, error) {
	return []reports.DailyRevenue{
		{Orders: 12, Revenue: 600},
		{Orders: 8, Revenue: 600},
	}, nil
}

func (stubReports) TopProducts(context.Context, time.Time, time.Time, int) ([]reports.TopProduct, error) {
	return []reports.TopProduct{{ProductID: 1, Name: "Cola", Quantity: 40, NetRevenue: 76, Revenue: 80}}, nil
}

func TestBuildSnapshotCarriesTheFigures(t *testing.T) {
	svc := NewService(stubReports{}, "", "INR")
	svc.WithNow(func() time.Time { return time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC) })

	snapshot, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)

	assert.Contains(t, snapshot, "2025-03-01 to 2025-03-31")
	assert.Contains(t, snapshot, "INR")
	assert.Contains(t, snapshot, "Net profit: 800.00")
	assert.Contains(t, snapshot, "Orders: 20 across 2 trading days")
	assert.Contains(t, snapshot, "Cola: 40 units, 76.00 net, 80.00 gross")
}

func TestAskWithoutKeyFailsFast(t *testing.T) {
	svc := NewService(stubReports{}, "", "INR")
	_, err := svc.Ask(context.Background(), "how is business?")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
