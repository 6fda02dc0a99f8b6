package logapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/logdash/internal/model"
)

// fakeService is an in-memory log service speaking the REST contract.
type fakeService struct {
	mu        sync.Mutex
	records   []model.LogRecord
	nextID    int
	lastQuery string
	failList  bool
}

func newFakeService(t *testing.T, records ...model.LogRecord) (*fakeService, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &fakeService{records: records, nextID: len(records) + 1}
	r := gin.New()
	api := r.Group("/api")
	api.GET("/logs", svc.list)
	api.GET("/logs/:id", svc.get)
	api.POST("/logs", svc.create)
	api.PUT("/logs/:id", svc.update)
	api.DELETE("/logs/:id", svc.delete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, srv
}

func (f *fakeService) list(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = c.Request.URL.RawQuery
	if f.failList {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "database unavailable"})
		return
	}
	out := []model.LogRecord{}
	for _, rec := range f.records {
		if s := c.Query("serverId"); s != "" && rec.ServerID != s {
			continue
		}
		if typ := c.Query("type"); typ != "" && rec.Type != typ {
			continue
		}
		out = append(out, rec)
	}
	c.JSON(http.StatusOK, out)
}

func (f *fakeService) indexOf(id string) int {
	for i, rec := range f.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeService) get(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(c.Param("id"))
	if i < 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, f.records[i])
}

func (f *fakeService) create(c *gin.Context) {
	var rec model.LogRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = fmt.Sprintf("log-%d", f.nextID)
	f.nextID++
	f.records = append(f.records, rec)
	c.JSON(http.StatusCreated, rec)
}

func (f *fakeService) update(c *gin.Context) {
	var rec model.LogRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(c.Param("id"))
	if i < 0 {
		c.Status(http.StatusNotFound)
		return
	}
	rec.ID = c.Param("id")
	f.records[i] = rec
	c.JSON(http.StatusOK, rec)
}

func (f *fakeService) delete(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(c.Param("id"))
	if i < 0 {
		c.Status(http.StatusNotFound)
		return
	}
	f.records = append(f.records[:i], f.records[i+1:]...)
	c.Status(http.StatusNoContent)
}

// stubAPI is a hand-written model.LogAPI for cache tests.
type stubAPI struct {
	mu        sync.Mutex
	logs      []model.LogRecord
	listCalls int
	deleteErr error

	// When non-nil, ListLogs signals started and waits on release.
	started chan struct{}
	release chan struct{}
}

func (s *stubAPI) ListLogs(ctx context.Context, _ model.LogQueryParams) ([]model.LogRecord, error) {
	s.mu.Lock()
	s.listCalls++
	logs := append([]model.LogRecord(nil), s.logs...)
	started, release := s.started, s.release
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return logs, nil
}

func (s *stubAPI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *stubAPI) GetLog(_ context.Context, id string) (model.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.logs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return model.LogRecord{}, &APIError{Status: http.StatusNotFound, Message: "Not Found"}
}

func (s *stubAPI) CreateLog(_ context.Context, rec model.LogRecord) (model.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, rec)
	return rec, nil
}

func (s *stubAPI) UpdateLog(_ context.Context, id string, rec model.LogRecord) (model.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.logs {
		if s.logs[i].ID == id {
			rec.ID = id
			s.logs[i] = rec
			return rec, nil
		}
	}
	return model.LogRecord{}, &APIError{Status: http.StatusNotFound, Message: "Not Found"}
}

func (s *stubAPI) DeleteLog(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.logs {
		if s.logs[i].ID == id {
			s.logs = append(s.logs[:i], s.logs[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Message: "Not Found"}
}
