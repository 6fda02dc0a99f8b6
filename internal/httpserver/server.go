package httpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/logdash/internal/logapi"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
	"github.com/tinytelemetry/logdash/internal/transform"
)

// Server exposes the derived dashboard data as JSON.
type Server struct {
	addr      string
	source    model.LogSource
	settings  *settings.Store
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	mu          sync.Mutex
	lastRefresh time.Time
	lastErr     error
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, source model.LogSource, store *settings.Store) *Server {
	if addr == "" {
		addr = model.DefaultListenAddr
	}
	if store == nil {
		store = settings.Open(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		source:    source,
		settings:  store,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/summary", s.handleSummary)
	api.GET("/analysis", s.handleAnalysis)
	api.GET("/heatmap", s.handleHeatmap)
	api.GET("/logs", s.handleLogs)
	api.DELETE("/logs/:id", s.handleDeleteLog)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.POST("/settings/reset", s.handleResetSettings)
	api.POST("/settings/dark-mode", s.handleToggleDarkMode)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("httpserver: serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the listen address, resolved once Start has run.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Refresh refetches the full log set and records the outcome for /api/health.
// It is the body of the serve-mode refresh loop.
func (s *Server) Refresh(ctx context.Context) {
	_, err := s.source.Refetch(ctx, model.LogQueryParams{})
	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		log.Printf("httpserver: refresh failed: %v", err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	last, lastErr := s.lastRefresh, s.lastErr
	s.mu.Unlock()

	body := gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}
	if !last.IsZero() {
		body["last_refresh"] = last.UTC().Format(time.RFC3339)
	}
	if lastErr != nil {
		body["status"] = "degraded"
		body["last_error"] = lastErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

// fetch loads the cached log set, writing an error response on failure.
func (s *Server) fetch(c *gin.Context) ([]model.LogRecord, bool) {
	logs, err := s.source.FetchLogs(c.Request.Context(), model.LogQueryParams{})
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return logs, true
}

func (s *Server) handleSummary(c *gin.Context) {
	logs, ok := s.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transform.Summarize(logs))
}

// analysisParams reads field and groupBy, defaulting to count by type.
func analysisParams(c *gin.Context) (model.Field, model.GroupBy, error) {
	def := model.DefaultAnalysisParams()
	field, err := model.ParseField(c.DefaultQuery("field", string(def.Field)))
	if err != nil {
		return "", "", err
	}
	groupBy, err := model.ParseGroupBy(c.DefaultQuery("groupBy", string(def.GroupBy)))
	if err != nil {
		return "", "", err
	}
	return field, groupBy, nil
}

func (s *Server) handleAnalysis(c *gin.Context) {
	field, groupBy, err := analysisParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logs, ok := s.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transform.GroupAndAggregate(logs, field, groupBy))
}

func (s *Server) handleHeatmap(c *gin.Context) {
	field, groupBy, err := analysisParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logs, ok := s.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transform.ToHeatmapSeries(logs, field, groupBy))
}

func (s *Server) handleLogs(c *gin.Context) {
	logs, ok := s.fetch(c)
	if !ok {
		return
	}
	filter := transform.LogFilter{
		ServerID: c.Query("serverId"),
		Type:     c.Query("type"),
	}
	c.JSON(http.StatusOK, transform.FilterLogs(logs, filter))
}

func (s *Server) handleDeleteLog(c *gin.Context) {
	if err := s.source.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Get())
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	st, err := s.settings.Update(patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleResetSettings(c *gin.Context) {
	st, err := s.settings.Reset()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleToggleDarkMode(c *gin.Context) {
	st, err := s.settings.ToggleDarkMode()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		verr   *settings.ValidationError
		apiErr *logapi.APIError
		netErr *logapi.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, logapi.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr), errors.As(err, &netErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
