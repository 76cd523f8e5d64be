// Package console serves the collection view and its actions as a small JSON API.
package console

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"channel-console/internal/collection"
	"channel-console/internal/dispatch"
	"channel-console/internal/logger"
	"channel-console/internal/metrics"
	"channel-console/internal/notice"
	"channel-console/internal/options"
	"channel-console/internal/security"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Journal is the read side of the action journal.
type Journal interface {
	GetActions(limit, offset int, failedOnly bool) ([]*logger.ActionLog, int, error)
	GetActionsByChannel(channelID int) ([]*logger.ActionLog, error)
	GetStats() (map[string]interface{}, error)
}

// Deps are the components the server exposes. Journal, Options and Metrics
// may be nil; their routes then answer 404. A nil CSRF leaves unsafe
// requests unchecked.
type Deps struct {
	View       *collection.View
	Dispatcher *dispatch.Dispatcher
	Notices    *notice.Center
	Options    *options.Manager
	Journal    Journal
	Metrics    *metrics.Metrics
	CSRF       *security.CSRFManager
	Logger     *logrus.Logger
}

// Server is the console HTTP API.
type Server struct {
	addr       string
	view       *collection.View
	dispatcher *dispatch.Dispatcher
	notices    *notice.Center
	options    *options.Manager
	journal    Journal
	metrics    *metrics.Metrics
	csrf       *security.CSRFManager
	logger     *logrus.Logger
	router     *gin.Engine

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer builds the router; it does not listen until Start.
func NewServer(addr string, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		addr:       addr,
		view:       deps.View,
		dispatcher: deps.Dispatcher,
		notices:    deps.Notices,
		options:    deps.Options,
		journal:    deps.Journal,
		metrics:    deps.Metrics,
		csrf:       deps.CSRF,
		logger:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())

	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	api.Use(s.loggingMiddleware())
	if s.csrf != nil {
		api.Use(s.csrf.Middleware())
		api.GET("/csrf-token", s.handleCSRFToken)
	}
	{
		channels := api.Group("/channels")
		channels.GET("", s.handleRender)
		channels.POST("/load", s.handleLoad)
		channels.POST("/refresh", s.handleRefresh)
		channels.POST("/page/:page", s.handleGoToPage)
		channels.POST("/search", s.handleSearch)
		channels.POST("/sort", s.handleSort)
		channels.POST("/rows/:index/:kind", s.handleRowAction)
		channels.POST("/bulk/:kind", s.handleBulkAction)

		api.GET("/detail", s.handleGetDetail)
		api.PUT("/detail", s.handleSetDetail)
		api.POST("/detail/toggle", s.handleToggleDetail)

		api.GET("/notices", s.handleNotices)

		if s.journal != nil {
			api.GET("/actions", s.handleActions)
			api.GET("/actions/stats", s.handleActionStats)
			api.GET("/actions/channel/:id", s.handleChannelActions)
		}

		if s.options != nil {
			api.GET("/options", s.handleListOptions)
			api.PUT("/options/:key", s.handleSetOption)
			api.POST("/options/:key/toggle", s.handleToggleOption)
			api.POST("/options/abilities", s.handleUpdateAbilities)
		}
	}
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until Stop is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.WithField("addr", s.addr).Info("console server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
