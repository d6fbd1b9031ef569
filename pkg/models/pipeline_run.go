package models

import "time"

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// PipelineRun is one audit row for a refresh run. It records the injected
// reference time, the resolved window and the per-stage row movement so a run
// can be replayed and its output explained.
type PipelineRun struct {
	ID            string     `json:"id" db:"id"`
	Status        string     `json:"status" db:"status"`
	SourcePath    string     `json:"source_path" db:"source_path"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	ReferenceTime time.Time  `json:"reference_time" db:"reference_time"`
	WindowStart   time.Time  `json:"window_start" db:"window_start"`
	WindowEnd     time.Time  `json:"window_end" db:"window_end"`

	RowsLoaded          int `json:"rows_loaded" db:"rows_loaded"`
	RowsNormalized      int `json:"rows_normalized" db:"rows_normalized"`
	RowsInWindow        int `json:"rows_in_window" db:"rows_in_window"`
	RowsDroppedDuration int `json:"rows_dropped_duration" db:"rows_dropped_duration"`
	RowsDeduplicated    int `json:"rows_deduplicated" db:"rows_deduplicated"`
	RowsPublished       int `json:"rows_published" db:"rows_published"`

	Error *string `json:"error,omitempty" db:"error"`
}

// RunListResponse is the payload for the run listing endpoint
type RunListResponse struct {
	Items      []PipelineRun `json:"items"`
	TotalCount int           `json:"total_count"`
}

// RunTriggeredResponse is the payload returned when a refresh is accepted
type RunTriggeredResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}
