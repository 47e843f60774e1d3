package models

import "time"

// PipelineReport summarizes one pipeline run for a task.
type PipelineReport struct {
	TaskID    string        `json:"task_id"`
	Keyword   string        `json:"keyword"`
	Searched  int           `json:"searched"`
	Filtered  int           `json:"filtered"`
	Checked   int           `json:"checked"`
	Available int           `json:"available"`
	Events    []ChangeEvent `json:"-"`
	Results   []ProbeResult `json:"results,omitempty"`
	NoResults bool          `json:"no_results,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}
