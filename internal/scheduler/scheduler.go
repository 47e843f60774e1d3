package scheduler

import (
	"context"
	"sync"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/models"

	"github.com/rs/zerolog"
)

// TaskSource lists schedulable tasks and records check completion times.
type TaskSource interface {
	ListActiveTasks(ctx context.Context) ([]*models.MonitoringTask, error)
	UpdateTaskLastChecked(ctx context.Context, taskID string, checkedAt time.Time) error
}

// TaskRunner executes one check run for a task.
type TaskRunner interface {
	Run(ctx context.Context, task *models.MonitoringTask) *models.PipelineReport
}

// checkJob carries one due task to a worker.
type checkJob struct {
	Task    *models.MonitoringTask
	CycleWG *sync.WaitGroup
}

// Scheduler wakes periodically, finds active tasks whose check interval has
// elapsed, and runs them through the pipeline on a fixed worker pool. A task
// never has more than one run in flight: the running set is checked before
// every enqueue, for periodic cycles and immediate triggers alike.
type Scheduler struct {
	cfg      config.SchedulerConfig
	store    TaskSource
	pipeline TaskRunner
	logger   zerolog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	jobChan    chan checkJob
	wg         sync.WaitGroup

	mu      sync.Mutex
	active  bool
	running map[string]bool
}

// NewScheduler creates the task scheduler.
func NewScheduler(cfg config.SchedulerConfig, store TaskSource, runner TaskRunner, logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:        cfg,
		store:      store,
		pipeline:   runner,
		logger:     logger.With().Str("component", "Scheduler").Logger(),
		ctx:        ctx,
		cancelFunc: cancel,
		running:    make(map[string]bool),
	}
}

// Start launches the worker pool and the periodic loop. The first cycle runs
// immediately; subsequent cycles follow the configured wake interval. Loop
// errors back off for the cooldown period instead of tightening into a retry
// spin.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		s.logger.Warn().Msg("Scheduler already active")
		return nil
	}
	s.active = true
	s.mu.Unlock()

	numWorkers := s.cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = 1
		s.logger.Warn().Int("configured_workers", s.cfg.MaxWorkers).Msg("MaxWorkers is not configured, defaulting to 1 worker")
	}
	s.jobChan = make(chan checkJob, numWorkers)

	s.logger.Info().Int("num_workers", numWorkers).Msg("Starting scheduler workers")
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	go s.loop()
	return nil
}

func (s *Scheduler) loop() {
	defer func() {
		// Closing under the lock keeps TriggerTask from sending on a
		// closed channel.
		s.mu.Lock()
		s.active = false
		close(s.jobChan)
		s.mu.Unlock()
		s.wg.Wait()
		s.logger.Info().Msg("Scheduler loop and workers stopped")
	}()

	interval := s.cfg.CheckInterval()
	if interval <= 0 {
		interval = time.Duration(config.DefaultSchedulerCheckIntervalSeconds) * time.Second
		s.logger.Warn().Int("configured_interval", s.cfg.CheckIntervalSeconds).Msg("CheckIntervalSeconds is not configured, using default")
	}

	for {
		if err := s.runCycle(); err != nil {
			s.logger.Error().Err(err).Dur("cooldown", s.cfg.Cooldown()).Msg("Scheduler cycle failed, cooling down")
			if !s.sleep(s.cfg.Cooldown()) {
				return
			}
			continue
		}
		if !s.sleep(interval) {
			return
		}
	}
}

// runCycle enqueues every due task and waits for the cycle's runs to finish.
func (s *Scheduler) runCycle() error {
	tasks, err := s.store.ListActiveTasks(s.ctx)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to list active tasks")
	}

	now := time.Now()
	interval := s.cfg.CheckInterval()
	var due []*models.MonitoringTask
	for _, task := range tasks {
		if task.IsDue(now, interval) {
			due = append(due, task)
		}
	}
	s.logger.Debug().Int("active", len(tasks)).Int("due", len(due)).Msg("Scheduler cycle")
	if len(due) == 0 {
		return nil
	}

	var cycleWG sync.WaitGroup
	for _, task := range due {
		if !s.markRunning(task.ID) {
			s.logger.Debug().Str("task_id", task.ID).Msg("Task already has a run in flight, skipping")
			continue
		}
		cycleWG.Add(1)
		job := checkJob{Task: task, CycleWG: &cycleWG}
		select {
		case s.jobChan <- job:
		case <-s.ctx.Done():
			s.unmarkRunning(task.ID)
			cycleWG.Done()
			return nil
		}
	}
	cycleWG.Wait()
	return nil
}

// TriggerTask runs one task immediately on the worker pool, ahead of its
// periodic schedule. Used for a task's first check right after creation.
// Returns false when the task already has a run in flight or the pool is
// saturated.
func (s *Scheduler) TriggerTask(task *models.MonitoringTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.running[task.ID] {
		return false
	}
	select {
	case s.jobChan <- checkJob{Task: task}:
		s.running[task.ID] = true
		s.logger.Info().Str("task_id", task.ID).Msg("Triggered immediate check")
		return true
	default:
		s.logger.Warn().Str("task_id", task.ID).Msg("Worker pool saturated, immediate check not scheduled")
		return false
	}
}

// worker consumes jobs until the channel is closed.
func (s *Scheduler) worker(id int) {
	defer s.wg.Done()
	s.logger.Debug().Int("worker_id", id).Msg("Scheduler worker started")
	for job := range s.jobChan {
		s.runTask(id, job.Task)
		if job.CycleWG != nil {
			job.CycleWG.Done()
		}
	}
	s.logger.Debug().Int("worker_id", id).Msg("Scheduler worker stopped")
}

// runTask executes one pipeline run with panic isolation. A panicking task
// run is logged and released; it never takes down the worker or the loop.
func (s *Scheduler) runTask(workerID int, task *models.MonitoringTask) {
	defer s.unmarkRunning(task.ID)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Int("worker_id", workerID).
				Str("task_id", task.ID).
				Interface("panic", r).
				Msg("Task run panicked")
		}
		// The last-checked write happens even for a panicked run, so the
		// task waits out its interval instead of re-panicking every wake.
		if err := s.store.UpdateTaskLastChecked(s.ctx, task.ID, time.Now()); err != nil {
			// A missed bookkeeping write only causes an extra check next cycle.
			s.logger.Error().Err(err).Str("task_id", task.ID).Msg("Failed to update last-checked time")
		}
	}()

	report := s.pipeline.Run(s.ctx, task)
	if report.Error != "" {
		s.logger.Warn().Str("task_id", task.ID).Str("error", report.Error).Msg("Task run finished with error")
	}
}

// IsRunning reports whether the scheduler loop is currently active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) markRunning(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[taskID] {
		return false
	}
	s.running[taskID] = true
	return true
}

func (s *Scheduler) unmarkRunning(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, taskID)
}

// sleep waits for d or until the scheduler context ends. Returns false when
// the context ended.
func (s *Scheduler) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Stop signals the scheduler to shut down and waits for the loop and workers
// to finish, bounded by a timeout.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		s.logger.Info().Msg("Scheduler was not active")
		return
	}
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping scheduler...")
	s.cancelFunc()

	shutdownTimeout := 10 * time.Second
	checkInterval := 200 * time.Millisecond
	start := time.Now()
	for {
		s.mu.Lock()
		isActive := s.active
		s.mu.Unlock()
		if !isActive {
			s.logger.Info().Msg("Scheduler stopped")
			return
		}
		if time.Since(start) > shutdownTimeout {
			s.logger.Warn().Msg("Scheduler did not stop gracefully within the timeout")
			return
		}
		time.Sleep(checkInterval)
	}
}
