package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskSource struct {
	mu          sync.Mutex
	tasks       []*models.MonitoringTask
	lastChecked map[string]time.Time
}

func newFakeTaskSource(tasks ...*models.MonitoringTask) *fakeTaskSource {
	return &fakeTaskSource{tasks: tasks, lastChecked: make(map[string]time.Time)}
}

func (f *fakeTaskSource) ListActiveTasks(ctx context.Context) ([]*models.MonitoringTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks, nil
}

func (f *fakeTaskSource) UpdateTaskLastChecked(ctx context.Context, taskID string, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChecked[taskID] = checkedAt
	return nil
}

type fakeRunner struct {
	runs     atomic.Int32
	release  chan struct{}
	panicIDs map[string]bool
}

func (f *fakeRunner) Run(ctx context.Context, task *models.MonitoringTask) *models.PipelineReport {
	f.runs.Add(1)
	if f.panicIDs[task.ID] {
		panic("boom")
	}
	if f.release != nil {
		<-f.release
	}
	return &models.PipelineReport{TaskID: task.ID, Keyword: task.Keyword}
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		CheckIntervalSeconds: 3600,
		CooldownSeconds:      1,
		MaxWorkers:           2,
	}
}

func activeTask(id string) *models.MonitoringTask {
	return &models.MonitoringTask{
		ID:          id,
		Keyword:     "keyword " + id,
		TargetSites: []string{"example.com"},
		Status:      models.TaskStatusActive,
		CreatedAt:   time.Now(),
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestScheduler_RunsDueTasksOnFirstCycle(t *testing.T) {
	task := activeTask("task-1")
	source := newFakeTaskSource(task)
	runner := &fakeRunner{}
	sched := NewScheduler(testSchedulerConfig(), source, runner, zerolog.Nop())

	require.NoError(t, sched.Start())
	defer sched.Stop()

	waitFor(t, 3*time.Second, func() bool { return runner.runs.Load() == 1 })
	waitFor(t, 3*time.Second, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		_, ok := source.lastChecked["task-1"]
		return ok
	})
}

func TestScheduler_SkipsNotDueTasks(t *testing.T) {
	task := activeTask("task-1")
	recent := time.Now()
	task.LastCheckedAt = &recent

	runner := &fakeRunner{}
	sched := NewScheduler(testSchedulerConfig(), newFakeTaskSource(task), runner, zerolog.Nop())

	require.NoError(t, sched.Start())
	defer sched.Stop()

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), runner.runs.Load())
}

func TestScheduler_AtMostOneRunPerTask(t *testing.T) {
	task := activeTask("task-1")
	runner := &fakeRunner{release: make(chan struct{})}
	sched := NewScheduler(testSchedulerConfig(), newFakeTaskSource(task), runner, zerolog.Nop())

	require.NoError(t, sched.Start())
	defer sched.Stop()

	// Wait until the first cycle's run is in flight, then the trigger for
	// the same task must be rejected.
	waitFor(t, 3*time.Second, func() bool { return runner.runs.Load() == 1 })
	assert.False(t, sched.TriggerTask(task))

	close(runner.release)
	waitFor(t, 3*time.Second, func() bool {
		sched.mu.Lock()
		defer sched.mu.Unlock()
		return !sched.running["task-1"]
	})
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestScheduler_TriggerRunsImmediately(t *testing.T) {
	// No stored tasks, so only the explicit trigger can cause a run.
	runner := &fakeRunner{}
	sched := NewScheduler(testSchedulerConfig(), newFakeTaskSource(), runner, zerolog.Nop())

	require.NoError(t, sched.Start())
	defer sched.Stop()

	assert.True(t, sched.TriggerTask(activeTask("task-new")))
	waitFor(t, 3*time.Second, func() bool { return runner.runs.Load() == 1 })
}

func TestScheduler_PanicIsolated(t *testing.T) {
	panicking := activeTask("task-panics")
	healthy := activeTask("task-ok")
	source := newFakeTaskSource(panicking, healthy)
	runner := &fakeRunner{panicIDs: map[string]bool{"task-panics": true}}
	sched := NewScheduler(testSchedulerConfig(), source, runner, zerolog.Nop())

	require.NoError(t, sched.Start())
	defer sched.Stop()

	waitFor(t, 3*time.Second, func() bool { return runner.runs.Load() == 2 })

	// The panicking task is released so a later cycle can retry it.
	waitFor(t, 3*time.Second, func() bool {
		sched.mu.Lock()
		defer sched.mu.Unlock()
		return !sched.running["task-panics"]
	})

	// Bookkeeping still ran for the panicking task's sibling.
	waitFor(t, 3*time.Second, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		_, ok := source.lastChecked["task-ok"]
		return ok
	})

	// The panicking task is bookkept too, so it waits out its interval
	// instead of being re-dispatched every wake.
	waitFor(t, 3*time.Second, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		_, ok := source.lastChecked["task-panics"]
		return ok
	})
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	sched := NewScheduler(testSchedulerConfig(), newFakeTaskSource(), &fakeRunner{}, zerolog.Nop())
	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())

	sched.Stop()
	sched.Stop()

	assert.False(t, sched.IsRunning())
	assert.False(t, sched.TriggerTask(activeTask("task-late")))
}
