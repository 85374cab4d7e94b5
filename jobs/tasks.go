// Package jobs holds the background task types and the Asynq worker that
// runs them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans the journal for unbalanced entries.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup pre-populates the report cache for common ranges.
	TaskReportsWarmup = "reports:warmup"
)

// LedgerIntegrityPayload bounds how much of the journal a scan covers.
type LedgerIntegrityPayload struct {
	// Days limits the scan to entries dated within the last N days.
	// Zero scans the whole journal.
	Days int `json:"days"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// ReportsWarmupPayload selects which ranges to warm.
type ReportsWarmupPayload struct {
	// Days lists the trailing ranges to warm, e.g. [1, 7, 30].
	Days []int `json:"days"`
}

// NewReportsWarmupTask constructs a cache warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
