package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/datastore"
	"productwatch/internal/models"
	"productwatch/internal/notifier"
	"productwatch/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 20

// MonitorHandler serves the monitoring task endpoints.
type MonitorHandler struct {
	cfg       config.ServerConfig
	store     datastore.Store
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

// NewMonitorHandler creates a handler over the task store and scheduler.
func NewMonitorHandler(cfg config.ServerConfig, store datastore.Store, sched *scheduler.Scheduler, logger zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		cfg:       cfg,
		store:     store,
		scheduler: sched,
		logger:    logger.With().Str("component", "MonitorHandler").Logger(),
	}
}

type createMonitorRequest struct {
	Keyword     string   `json:"keyword" binding:"required"`
	TargetSites []string `json:"target_sites"`
	NotifyEmail string   `json:"notify_email"`
}

// Create registers a new monitoring task and triggers its first check.
func (h *MonitorHandler) Create(c *gin.Context) {
	var req createMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sites := req.TargetSites
	if len(sites) == 0 {
		sites = h.cfg.DefaultSites
	}
	if len(sites) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one target site is required"})
		return
	}

	task := &models.MonitoringTask{
		ID:          uuid.New().String(),
		Keyword:     req.Keyword,
		TargetSites: sites,
		NotifyEmail: req.NotifyEmail,
		Status:      models.TaskStatusActive,
		CreatedAt:   time.Now(),
	}
	if err := h.store.CreateTask(c.Request.Context(), task); err != nil {
		h.logger.Error().Err(err).Str("keyword", req.Keyword).Msg("Failed to create monitoring task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create monitoring task"})
		return
	}

	triggered := h.scheduler.TriggerTask(task)
	h.logger.Info().Str("task_id", task.ID).Str("keyword", task.Keyword).Bool("triggered", triggered).Msg("Monitoring task created")

	c.JSON(http.StatusCreated, gin.H{
		"task":            task,
		"first_check_now": triggered,
	})
}

// List returns the active monitoring tasks. Passing all=true includes paused
// and stopped tasks.
func (h *MonitorHandler) List(c *gin.Context) {
	list := h.store.ListActiveTasks
	if c.Query("all") == "true" {
		list = h.store.ListTasks
	}
	tasks, err := list(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list monitoring tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list monitoring tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"monitors": tasks,
		"count":    len(tasks),
	})
}

type updateStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// UpdateStatus transitions a task between active, paused, and stopped. Paused
// and stopped tasks are skipped by the scheduler until reactivated.
func (h *MonitorHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	switch req.Status {
	case models.TaskStatusActive, models.TaskStatusPaused, models.TaskStatusStopped:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": string(req.Status)})
		return
	}

	if err := h.store.UpdateTaskStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Monitoring task not found"})
			return
		}
		h.logger.Error().Err(err).Str("task_id", id).Msg("Failed to update task status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": id, "status": req.Status})
}

// GetByID returns one monitoring task.
func (h *MonitorHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	task, err := h.store.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Monitoring task not found"})
			return
		}
		h.logger.Error().Err(err).Str("task_id", id).Msg("Failed to load monitoring task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monitoring task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes a monitoring task and its history.
func (h *MonitorHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Monitoring task not found"})
			return
		}
		h.logger.Error().Err(err).Str("task_id", id).Msg("Failed to delete monitoring task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete monitoring task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Checks returns a task's probe history, newest first.
func (h *MonitorHandler) Checks(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.GetTaskByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Monitoring task not found"})
			return
		}
		h.logger.Error().Err(err).Str("task_id", id).Msg("Failed to load monitoring task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monitoring task"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	history, err := h.store.CheckHistory(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("task_id", id).Msg("Failed to load check history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load check history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": id,
		"checks":  history,
		"count":   len(history),
	})
}

// SystemHandler serves status and diagnostics endpoints.
type SystemHandler struct {
	globalCfg  *config.GlobalConfig
	store      datastore.Store
	scheduler  *scheduler.Scheduler
	dispatcher *notifier.Dispatcher
	logger     zerolog.Logger
}

// NewSystemHandler creates the system endpoints handler.
func NewSystemHandler(globalCfg *config.GlobalConfig, store datastore.Store, sched *scheduler.Scheduler, dispatcher *notifier.Dispatcher, logger zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		globalCfg:  globalCfg,
		store:      store,
		scheduler:  sched,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "SystemHandler").Logger(),
	}
}

// Status summarizes scheduler state and which collaborators are configured.
func (h *SystemHandler) Status(c *gin.Context) {
	tasks, err := h.store.ListActiveTasks(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count active tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count active tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scheduler_running":    h.scheduler.IsRunning(),
		"active_task_count":    len(tasks),
		"email_configured":     h.globalCfg.NotificationConfig.IsConfigured(),
		"search_configured":    h.globalCfg.SearchConfig.IsConfigured(),
		"relevance_configured": h.globalCfg.RelevanceConfig.IsConfigured(),
		"check_interval_sec":   h.globalCfg.SchedulerConfig.CheckIntervalSeconds,
	})
}

type testEmailRequest struct {
	To string `json:"to" binding:"required,email"`
}

// TestEmail sends the configuration test email.
func (h *SystemHandler) TestEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.dispatcher.SendTest(c.Request.Context(), req.To); err != nil {
		h.logger.Error().Err(err).Str("to", req.To).Msg("Test email failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send test email", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true, "to": req.To})
}

// Health is the liveness endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
