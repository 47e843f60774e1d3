package datastore

import (
	"context"
	"time"

	"productwatch/internal/models"
)

// Store persists monitoring tasks and their probe history. Probe results are
// append-only; tasks are mutated only through the explicit update methods.
type Store interface {
	CreateTask(ctx context.Context, task *models.MonitoringTask) error
	GetTaskByID(ctx context.Context, taskID string) (*models.MonitoringTask, error)
	ListTasks(ctx context.Context) ([]*models.MonitoringTask, error)
	ListActiveTasks(ctx context.Context) ([]*models.MonitoringTask, error)
	UpdateTaskLastChecked(ctx context.Context, taskID string, checkedAt time.Time) error
	UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error
	DeleteTask(ctx context.Context, taskID string) error

	AppendProbeResult(ctx context.Context, taskID string, result models.ProbeResult) error
	LatestResultsByURL(ctx context.Context, taskID string) (map[string]models.ProbeResult, error)
	CheckHistory(ctx context.Context, taskID string, limit int) ([]models.ProbeResult, error)

	Close() error
}
