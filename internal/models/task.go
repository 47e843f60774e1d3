package models

import "time"

// TaskStatus represents the lifecycle state of a monitoring task.
type TaskStatus string

const (
	TaskStatusActive  TaskStatus = "active"
	TaskStatusPaused  TaskStatus = "paused"
	TaskStatusStopped TaskStatus = "stopped"
)

// MonitoringTask is a user's standing watch for a product keyword on a set of
// target sites. Status and LastCheckedAt are mutated only by the scheduler's
// bookkeeping; everything else is fixed at creation.
type MonitoringTask struct {
	ID            string     `json:"task_id"`
	Keyword       string     `json:"keyword"`
	TargetSites   []string   `json:"target_sites"`
	NotifyEmail   string     `json:"notify_email,omitempty"`
	Status        TaskStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

// IsActive reports whether the task should be considered by the scheduler.
func (t *MonitoringTask) IsActive() bool {
	return t.Status == TaskStatusActive
}

// IsDue reports whether the task should be checked now given the configured
// check interval. A task that has never been checked is always due.
func (t *MonitoringTask) IsDue(now time.Time, interval time.Duration) bool {
	if t.LastCheckedAt == nil {
		return true
	}
	return now.Sub(*t.LastCheckedAt) >= interval
}
