package api

import (
	"context"
	"net/http"
	"time"

	"productwatch/internal/config"
	"productwatch/internal/datastore"
	"productwatch/internal/notifier"
	"productwatch/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server is the HTTP API shell over the task store and scheduler.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer builds the gin router and wires all endpoints.
func NewServer(
	globalCfg *config.GlobalConfig,
	store datastore.Store,
	sched *scheduler.Scheduler,
	dispatcher *notifier.Dispatcher,
	logger zerolog.Logger,
) *Server {
	serverLogger := logger.With().Str("component", "APIServer").Logger()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(serverLogger))

	monitors := NewMonitorHandler(globalCfg.ServerConfig, store, sched, logger)
	system := NewSystemHandler(globalCfg, store, sched, dispatcher, logger)

	router.GET("/health", Health)
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/monitors", monitors.Create)
		apiGroup.GET("/monitors", monitors.List)
		apiGroup.GET("/monitors/:id", monitors.GetByID)
		apiGroup.PATCH("/monitors/:id/status", monitors.UpdateStatus)
		apiGroup.DELETE("/monitors/:id", monitors.Delete)
		apiGroup.GET("/monitors/:id/checks", monitors.Checks)

		apiGroup.GET("/system/status", system.Status)
		apiGroup.POST("/system/test-email", system.TestEmail)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              globalCfg.ServerConfig.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: serverLogger,
	}
}

// Start serves until the context ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}
