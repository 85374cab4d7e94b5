package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerIntegrityJob re-checks the books: postings assert balance before
// commit, so a hit here means the journal was edited out of band or the
// writer has a bug. Findings are logged loudly, never auto-corrected.
type LedgerIntegrityJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{
		Pool:   pool,
		Logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the integrity scan.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	since := time.Time{}
	if payload.Days > 0 {
		since = j.clock().AddDate(0, 0, -payload.Days)
	}

	rows, err := j.Pool.Query(ctx, `SELECT e.id, e.description, SUM(l.debit), SUM(l.credit)
FROM ledger_entries e
JOIN ledger_entry_lines l ON l.entry_id = e.id
WHERE e.entry_date >= $1
GROUP BY e.id, e.description
HAVING ABS(SUM(l.debit) - SUM(l.credit)) > 1e-9`, since)
	if err != nil {
		return fmt.Errorf("ledger integrity: query: %w", err)
	}
	defer rows.Close()

	var findings int
	for rows.Next() {
		var (
			id            int64
			description   *string
			debit, credit float64
		)
		if err := rows.Scan(&id, &description, &debit, &credit); err != nil {
			return err
		}
		findings++
		desc := ""
		if description != nil {
			desc = *description
		}
		j.Logger.Error("UNBALANCED LEDGER ENTRY",
			slog.Int64("entry_id", id),
			slog.String("description", desc),
			slog.Float64("debit", debit),
			slog.Float64("credit", credit))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if findings == 0 {
		j.Logger.Info("ledger integrity scan clean", slog.Time("since", since))
	} else {
		j.Logger.Error("ledger integrity scan found unbalanced entries",
			slog.Int("count", findings))
	}
	return nil
}
