package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(config.StorageConfig{
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTask(id string) *models.MonitoringTask {
	return &models.MonitoringTask{
		ID:          id,
		Keyword:     "nintendo switch",
		TargetSites: []string{"amazon.co.jp", "rakuten.co.jp"},
		NotifyEmail: "user@example.com",
		Status:      models.TaskStatusActive,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func sampleResult(url string, available bool, price *float64) models.ProbeResult {
	return models.ProbeResult{
		URL:         url,
		Title:       "Test Product",
		IsAvailable: available,
		Price:       price,
		Details:     map[string]interface{}{"stock_status": "in_stock"},
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		Outcome:     models.ProbeOutcomeOK,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateAndGetTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := sampleTask("task-1")

	require.NoError(t, store.CreateTask(ctx, task))

	loaded, err := store.GetTaskByID(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, task.Keyword, loaded.Keyword)
	assert.Equal(t, task.TargetSites, loaded.TargetSites)
	assert.Equal(t, task.NotifyEmail, loaded.NotifyEmail)
	assert.Equal(t, models.TaskStatusActive, loaded.Status)
	assert.Nil(t, loaded.LastCheckedAt)
}

func TestGetTask_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTaskByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, err, errorwrapper.ErrNotFound)
}

func TestListActiveTasks_ExcludesPaused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-2")))
	require.NoError(t, store.UpdateTaskStatus(ctx, "task-2", models.TaskStatusPaused))

	active, err := store.ListActiveTasks(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "task-1", active[0].ID)

	all, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateTaskLastChecked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))

	checkedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpdateTaskLastChecked(ctx, "task-1", checkedAt))

	loaded, err := store.GetTaskByID(ctx, "task-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.LastCheckedAt)
	assert.True(t, loaded.LastCheckedAt.Equal(checkedAt))

	assert.ErrorIs(t, store.UpdateTaskLastChecked(ctx, "missing", checkedAt), ErrTaskNotFound)
}

func TestDeleteTask_RemovesHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))
	require.NoError(t, store.AppendProbeResult(ctx, "task-1", sampleResult("https://example.com/p/a", true, floatPtr(100))))

	require.NoError(t, store.DeleteTask(ctx, "task-1"))

	_, err := store.GetTaskByID(ctx, "task-1")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	latest, err := store.LatestResultsByURL(ctx, "task-1")
	require.NoError(t, err)
	assert.Empty(t, latest)

	assert.ErrorIs(t, store.DeleteTask(ctx, "task-1"), ErrTaskNotFound)
}

func TestLatestResultsByURL_PicksNewestPerURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))

	older := sampleResult("https://example.com/p/a", false, nil)
	newer := sampleResult("https://example.com/p/a", true, floatPtr(120))
	other := sampleResult("https://example.com/p/b", true, floatPtr(50))
	require.NoError(t, store.AppendProbeResult(ctx, "task-1", older))
	require.NoError(t, store.AppendProbeResult(ctx, "task-1", newer))
	require.NoError(t, store.AppendProbeResult(ctx, "task-1", other))

	latest, err := store.LatestResultsByURL(ctx, "task-1")
	require.NoError(t, err)
	require.Len(t, latest, 2)

	a := latest["https://example.com/p/a"]
	assert.True(t, a.IsAvailable)
	require.NotNil(t, a.Price)
	assert.Equal(t, 120.0, *a.Price)
	assert.Equal(t, "in_stock", a.Details["stock_status"])
}

func TestLatestResultsByURL_IsolatedPerTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-2")))
	require.NoError(t, store.AppendProbeResult(ctx, "task-1", sampleResult("https://example.com/p/a", true, nil)))

	latest, err := store.LatestResultsByURL(ctx, "task-2")
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestCheckHistory_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateTask(ctx, sampleTask("task-1")))

	for i := 0; i < 5; i++ {
		result := sampleResult("https://example.com/p/a", true, floatPtr(float64(100+i)))
		require.NoError(t, store.AppendProbeResult(ctx, "task-1", result))
	}

	history, err := store.CheckHistory(ctx, "task-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 104.0, *history[0].Price)
	assert.Equal(t, 102.0, *history[2].Price)
}
