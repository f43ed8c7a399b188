package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// Failure is one per-item update failure recorded during execution.
type Failure struct {
	SKU      string  `json:"sku"`
	NativeID string  `json:"native_id"`
	Price    float64 `json:"price"`
	Error    string  `json:"error"`
}

// Report aggregates the outcome of one reconciliation run. It is built
// incrementally by the Executor and emitted once at end of run.
type Report struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Counters, one bucket per decision category plus failures.
	Matched    int `json:"matched"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	SourceOnly int `json:"source_only"`
	TargetOnly int `json:"target_only"`
	Failed     int `json:"failed"`

	// Failures in decision order.
	Failures []Failure `json:"failures,omitempty"`

	// Duplicate-SKU diagnostics carried over from indexing, per platform.
	SourceDuplicates int `json:"source_duplicates,omitempty"`
	TargetDuplicates int `json:"target_duplicates,omitempty"`
}

// NewReport creates a report with a fresh run ID.
func NewReport(dryRun bool) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
}

// Duration returns the wall-clock duration of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Success reports whether the run completed with no per-item failures.
func (r *Report) Success() bool {
	return r.Failed == 0
}
