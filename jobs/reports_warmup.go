package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vunnam-pos/vunnam-pos/internal/reports"
)

// ReportsWarmupJob pre-populates the report cache so the dashboard's first
// morning load does not pay for the aggregation.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

func NewReportsWarmupJob(svc *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: svc,
		Logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle warms P&L, daily revenue, and top products for each trailing range.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Days) == 0 {
		payload.Days = []int{1, 7, 30}
	}

	to := j.clock()
	for _, days := range payload.Days {
		from := to.AddDate(0, 0, -days)
		if _, err := j.Reports.Pnl(ctx, from, to); err != nil {
			j.Logger.Warn("warm pnl", slog.Int("days", days), slog.Any("error", err))
		}
		if _, err := j.Reports.DailyRevenue(ctx, from, to); err != nil {
			j.Logger.Warn("warm daily revenue", slog.Int("days", days), slog.Any("error", err))
		}
		if _, err := j.Reports.TopProducts(ctx, from, to, 10); err != nil {
			j.Logger.Warn("warm top products", slog.Int("days", days), slog.Any("error", err))
		}
	}
	j.Logger.Info("report cache warmed", slog.Any("days", payload.Days))
	return nil
}
