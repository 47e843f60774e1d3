package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/models"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrTaskNotFound is returned when a task ID does not exist in the store.
// It wraps errorwrapper.ErrNotFound so generic not-found checks match too.
var ErrTaskNotFound = fmt.Errorf("monitoring task %w", errorwrapper.ErrNotFound)

// SQLiteStore is the Store implementation backed by a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the SQLite database and ensures
// the schema is in place.
func NewSQLiteStore(cfg config.StorageConfig, logger zerolog.Logger) (*SQLiteStore, error) {
	storeLogger := logger.With().Str("component", "SQLiteStore").Logger()
	storeLogger.Info().Str("db_path", cfg.SQLiteDBPath).Msg("Initializing database connection")

	dbDir := filepath.Dir(cfg.SQLiteDBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", cfg.SQLiteDBPath, err)
	}
	// modernc sqlite is single-writer; serialize access at the pool level.
	dbInstance.SetMaxOpenConns(1)

	store := &SQLiteStore{db: dbInstance, logger: storeLogger}
	if err := store.initSchema(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	storeLogger.Info().Str("path", cfg.SQLiteDBPath).Msg("Database initialized and schema verified")
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS monitoring_tasks (
		id TEXT PRIMARY KEY,
		keyword TEXT NOT NULL,
		target_sites TEXT NOT NULL,
		notify_email TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_checked_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS probe_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		is_available INTEGER NOT NULL,
		price REAL,
		details TEXT,
		outcome TEXT NOT NULL,
		checked_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES monitoring_tasks(id)
	);
	CREATE INDEX IF NOT EXISTS idx_probe_results_task_url ON probe_results(task_id, url, checked_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// CreateTask inserts a new monitoring task.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.MonitoringTask) error {
	sites, err := json.Marshal(task.TargetSites)
	if err != nil {
		return errorwrapper.NewPersistenceError("create_task", err)
	}
	query := `INSERT INTO monitoring_tasks (id, keyword, target_sites, notify_email, status, created_at, last_checked_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		task.ID, task.Keyword, string(sites),
		nullString(task.NotifyEmail), string(task.Status),
		task.CreatedAt, nullTime(task.LastCheckedAt))
	if err != nil {
		s.logger.Error().Err(err).Str("task_id", task.ID).Msg("Failed to insert monitoring task")
		return errorwrapper.NewPersistenceError("create_task", err)
	}
	s.logger.Info().Str("task_id", task.ID).Str("keyword", task.Keyword).Msg("Created monitoring task")
	return nil
}

// GetTaskByID returns the task with the given ID or ErrTaskNotFound.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, taskID string) (*models.MonitoringTask, error) {
	query := `SELECT id, keyword, target_sites, notify_email, status, created_at, last_checked_at FROM monitoring_tasks WHERE id = ?`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, errorwrapper.NewPersistenceError("get_task", err)
	}
	return task, nil
}

// ListTasks returns all tasks ordered by creation time.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]*models.MonitoringTask, error) {
	return s.listTasks(ctx, `SELECT id, keyword, target_sites, notify_email, status, created_at, last_checked_at FROM monitoring_tasks ORDER BY created_at`)
}

// ListActiveTasks returns tasks the scheduler should consider.
func (s *SQLiteStore) ListActiveTasks(ctx context.Context) ([]*models.MonitoringTask, error) {
	return s.listTasks(ctx, `SELECT id, keyword, target_sites, notify_email, status, created_at, last_checked_at FROM monitoring_tasks WHERE status = 'active' ORDER BY created_at`)
}

func (s *SQLiteStore) listTasks(ctx context.Context, query string, args ...interface{}) ([]*models.MonitoringTask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("list_tasks", err)
	}
	defer rows.Close()

	var tasks []*models.MonitoringTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errorwrapper.NewPersistenceError("list_tasks", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, errorwrapper.NewPersistenceError("list_tasks", err)
	}
	return tasks, nil
}

// UpdateTaskLastChecked records the completion time of a check run.
func (s *SQLiteStore) UpdateTaskLastChecked(ctx context.Context, taskID string, checkedAt time.Time) error {
	query := `UPDATE monitoring_tasks SET last_checked_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, checkedAt, taskID)
	if err != nil {
		return errorwrapper.NewPersistenceError("update_last_checked", err)
	}
	return s.requireRow(result, taskID)
}

// UpdateTaskStatus transitions a task's lifecycle state.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error {
	query := `UPDATE monitoring_tasks SET status = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, string(status), taskID)
	if err != nil {
		return errorwrapper.NewPersistenceError("update_status", err)
	}
	if err := s.requireRow(result, taskID); err != nil {
		return err
	}
	s.logger.Info().Str("task_id", taskID).Str("status", string(status)).Msg("Updated task status")
	return nil
}

// DeleteTask removes a task and its probe history.
func (s *SQLiteStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM probe_results WHERE task_id = ?`, taskID); err != nil {
		return errorwrapper.NewPersistenceError("delete_task", err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM monitoring_tasks WHERE id = ?`, taskID)
	if err != nil {
		return errorwrapper.NewPersistenceError("delete_task", err)
	}
	if err := s.requireRow(result, taskID); err != nil {
		return err
	}
	s.logger.Info().Str("task_id", taskID).Msg("Deleted monitoring task and its history")
	return nil
}

// AppendProbeResult stores one probe outcome as a new history row.
func (s *SQLiteStore) AppendProbeResult(ctx context.Context, taskID string, result models.ProbeResult) error {
	var details sql.NullString
	if len(result.Details) > 0 {
		encoded, err := json.Marshal(result.Details)
		if err != nil {
			return errorwrapper.NewPersistenceError("append_probe_result", err)
		}
		details = sql.NullString{String: string(encoded), Valid: true}
	}
	query := `INSERT INTO probe_results (task_id, url, title, is_available, price, details, outcome, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		taskID, result.URL, nullString(result.Title), result.IsAvailable,
		nullFloat(result.Price), details, string(result.Outcome), result.Timestamp)
	if err != nil {
		s.logger.Error().Err(err).Str("task_id", taskID).Str("url", result.URL).Msg("Failed to append probe result")
		return errorwrapper.NewPersistenceError("append_probe_result", err)
	}
	return nil
}

// LatestResultsByURL returns, for each URL ever probed for the task, its most
// recent probe result. This is the baseline the differ compares against.
func (s *SQLiteStore) LatestResultsByURL(ctx context.Context, taskID string) (map[string]models.ProbeResult, error) {
	query := `
	SELECT p.url, p.title, p.is_available, p.price, p.details, p.outcome, p.checked_at
	FROM probe_results p
	INNER JOIN (
		SELECT url, MAX(id) AS max_id FROM probe_results WHERE task_id = ? GROUP BY url
	) latest ON p.url = latest.url AND p.id = latest.max_id`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("latest_results", err)
	}
	defer rows.Close()

	latest := make(map[string]models.ProbeResult)
	for rows.Next() {
		result, err := scanProbeResult(rows)
		if err != nil {
			return nil, errorwrapper.NewPersistenceError("latest_results", err)
		}
		latest[result.URL] = result
	}
	if err := rows.Err(); err != nil {
		return nil, errorwrapper.NewPersistenceError("latest_results", err)
	}
	return latest, nil
}

// CheckHistory returns the most recent probe results for a task, newest first.
func (s *SQLiteStore) CheckHistory(ctx context.Context, taskID string, limit int) ([]models.ProbeResult, error) {
	query := `SELECT url, title, is_available, price, details, outcome, checked_at FROM probe_results WHERE task_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, taskID, limit)
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("check_history", err)
	}
	defer rows.Close()

	var results []models.ProbeResult
	for rows.Next() {
		result, err := scanProbeResult(rows)
		if err != nil {
			return nil, errorwrapper.NewPersistenceError("check_history", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, errorwrapper.NewPersistenceError("check_history", err)
	}
	return results, nil
}

func (s *SQLiteStore) requireRow(result sql.Result, taskID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errorwrapper.NewPersistenceError("rows_affected", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.MonitoringTask, error) {
	var task models.MonitoringTask
	var sites string
	var email sql.NullString
	var status string
	var lastChecked sql.NullTime
	if err := row.Scan(&task.ID, &task.Keyword, &sites, &email, &status, &task.CreatedAt, &lastChecked); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sites), &task.TargetSites); err != nil {
		return nil, fmt.Errorf("failed to decode target sites: %w", err)
	}
	task.NotifyEmail = email.String
	task.Status = models.TaskStatus(status)
	if lastChecked.Valid {
		t := lastChecked.Time
		task.LastCheckedAt = &t
	}
	return &task, nil
}

func scanProbeResult(row rowScanner) (models.ProbeResult, error) {
	var result models.ProbeResult
	var title sql.NullString
	var price sql.NullFloat64
	var details sql.NullString
	var outcome string
	if err := row.Scan(&result.URL, &title, &result.IsAvailable, &price, &details, &outcome, &result.Timestamp); err != nil {
		return models.ProbeResult{}, err
	}
	result.Title = title.String
	if price.Valid {
		p := price.Float64
		result.Price = &p
	}
	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &result.Details); err != nil {
			return models.ProbeResult{}, fmt.Errorf("failed to decode result details: %w", err)
		}
	}
	result.Outcome = models.ProbeOutcome(outcome)
	return result, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
