package history

import "time"

// Status is the outcome of one conversion attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every outcome in display order.
func Statuses() []Status {
	return []Status{StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled}
}

// Entry is one journaled conversion.
type Entry struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Input      string    `json:"input"`
	Output     string    `json:"output,omitempty"`
	Category   string    `json:"category"`
	Profile    string    `json:"profile"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Elapsed returns the wall time of the attempt.
func (e Entry) Elapsed() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
