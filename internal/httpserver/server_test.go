package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/logdash/internal/logapi"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSource struct {
	mu         sync.Mutex
	logs       []model.LogRecord
	fetchErr   error
	refetchErr error
	refetches  int
}

func (f *fakeSource) FetchLogs(context.Context, model.LogQueryParams) ([]model.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]model.LogRecord(nil), f.logs...), nil
}

func (f *fakeSource) Refetch(context.Context, model.LogQueryParams) ([]model.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refetches++
	if f.refetchErr != nil {
		return nil, f.refetchErr
	}
	return append([]model.LogRecord(nil), f.logs...), nil
}

func (f *fakeSource) DeleteLog(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.logs {
		if rec.ID == id {
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			return nil
		}
	}
	return &logapi.APIError{Method: http.MethodDelete, Path: "/logs/" + id, Status: http.StatusNotFound, Message: "log not found"}
}

func sampleLogs() []model.LogRecord {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []model.LogRecord{
		{ID: "1", ServerID: "web-1", Type: "a", Value: "x", Count: 2, Timestamp: &ts},
		{ID: "2", ServerID: "web-2", Type: "b", Value: "y", Count: 1},
		{ID: "3", ServerID: "web-1", Type: "a", Value: "z", Count: 3, Timestamp: &ts},
	}
}

func newTestServer(t *testing.T, src *fakeSource, storage settings.Storage) (*Server, http.Handler) {
	t.Helper()
	srv := NewServer("", src, settings.Open(storage))
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	src := &fakeSource{logs: sampleLogs()}
	srv, h := newTestServer(t, src, nil)

	w := do(t, h, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if _, ok := body["last_refresh"]; ok {
		t.Error("last_refresh reported before any refresh")
	}

	src.refetchErr = &logapi.NetworkError{Method: "GET", URL: "http://api/logs", Err: errors.New("connection refused")}
	srv.Refresh(context.Background())

	body = decode[map[string]any](t, do(t, h, http.MethodGet, "/api/health", ""))
	if body["status"] != "degraded" || body["last_error"] == nil || body["last_refresh"] == nil {
		t.Fatalf("health after failed refresh = %v", body)
	}
	if src.refetches != 1 {
		t.Fatalf("refetches = %d, want 1", src.refetches)
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{}, nil)
	w := do(t, h, http.MethodPost, "/api/health", "")

	// Gin returns 404 unless HandleMethodNotAllowed is enabled.
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{logs: sampleLogs()}, nil)
	w := do(t, h, http.MethodGet, "/api/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d; body: %s", w.Code, w.Body.String())
	}

	summary := decode[model.LogSummary](t, w)
	if summary.TotalLogs != 3 || summary.ServerCount != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.LogTypes["a"] != 2 || summary.LogTypes["b"] != 1 {
		t.Fatalf("logTypes = %v", summary.LogTypes)
	}
	if len(summary.TimeDistribution) != 1 || summary.TimeDistribution[0].Count != 2 {
		t.Fatalf("timeDistribution = %+v", summary.TimeDistribution)
	}
}

func TestSummaryEndpoint_Empty(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{}, nil)
	summary := decode[model.LogSummary](t, do(t, h, http.MethodGet, "/api/summary", ""))
	if summary.TotalLogs != 0 || len(summary.LogTypes) != 0 {
		t.Fatalf("empty summary = %+v", summary)
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{logs: sampleLogs()}, nil)

	tests := []struct {
		query string
		want  map[string]float64
	}{
		{"", map[string]float64{"a": 5, "b": 1}},
		{"?field=value&groupBy=type", map[string]float64{"a": 2, "b": 1}},
		{"?field=count&groupBy=serverId", map[string]float64{"web-1": 5, "web-2": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/analysis"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
			}
			rows := decode[[]model.GroupRow](t, w)
			if len(rows) != len(tt.want) {
				t.Fatalf("rows = %+v", rows)
			}
			for _, r := range rows {
				if tt.want[r.Group] != r.Value {
					t.Errorf("group %q = %v, want %v", r.Group, r.Value, tt.want[r.Group])
				}
			}
		})
	}
}

func TestAnalysisEndpoint_BadParams(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{logs: sampleLogs()}, nil)
	for _, path := range []string{"/api/analysis?field=bytes", "/api/heatmap?groupBy=host"} {
		w := do(t, h, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
}

func TestHeatmapEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{logs: sampleLogs()}, nil)
	cells := decode[[]model.HeatCell](t, do(t, h, http.MethodGet, "/api/heatmap?field=count&groupBy=type", ""))
	if len(cells) != 3 {
		t.Fatalf("cells = %+v, want one per record", cells)
	}
	if cells[0].X != "a" || cells[0].Y != "web-1" || cells[0].Value != 2 {
		t.Fatalf("first cell = %+v", cells[0])
	}
}

func TestLogsEndpoint_Filters(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, &fakeSource{logs: sampleLogs()}, nil)

	logs := decode[[]model.LogRecord](t, do(t, h, http.MethodGet, "/api/logs?serverId=WEB-1&type=A", ""))
	if len(logs) != 2 || logs[0].ID != "1" || logs[1].ID != "3" {
		t.Fatalf("filtered logs = %+v", logs)
	}

	logs = decode[[]model.LogRecord](t, do(t, h, http.MethodGet, "/api/logs?serverId=db", ""))
	if logs == nil || len(logs) != 0 {
		t.Fatalf("no-match result should be an empty array, got %+v", logs)
	}
}

func TestDeleteLogEndpoint(t *testing.T) {
	t.Parallel()

	src := &fakeSource{logs: sampleLogs()}
	_, h := newTestServer(t, src, nil)

	if w := do(t, h, http.MethodDelete, "/api/logs/2", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	logs := decode[[]model.LogRecord](t, do(t, h, http.MethodGet, "/api/logs", ""))
	for _, rec := range logs {
		if rec.ID == "2" {
			t.Fatal("deleted record still listed")
		}
	}
	if len(logs) != 2 {
		t.Fatalf("logs after delete = %d, want 2", len(logs))
	}

	w := do(t, h, http.MethodDelete, "/api/logs/2", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestUpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"api error", &logapi.APIError{Method: "GET", Path: "/logs", Status: 500, Message: "database unavailable"}, http.StatusBadGateway},
		{"network error", &logapi.NetworkError{Method: "GET", URL: "http://api/logs", Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{"wrapped not found", fmt.Errorf("list: %w", &logapi.APIError{Status: 404}), http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, h := newTestServer(t, &fakeSource{fetchErr: tt.err}, nil)
			w := do(t, h, http.MethodGet, "/api/summary", "")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			body := decode[map[string]any](t, w)
			if body["error"] == nil {
				t.Fatalf("error body missing: %s", w.Body.String())
			}
		})
	}
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	storage := &settings.MemoryStorage{}
	_, h := newTestServer(t, &fakeSource{}, storage)

	st := decode[settings.State](t, do(t, h, http.MethodGet, "/api/settings", ""))
	if st != settings.Defaults() {
		t.Fatalf("initial settings = %+v", st)
	}

	w := do(t, h, http.MethodPut, "/api/settings", `{"refreshInterval": 60, "defaultView": "logs"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d; body: %s", w.Code, w.Body.String())
	}
	st = decode[settings.State](t, w)
	if st.RefreshInterval != 60 || st.DefaultView != model.ViewLogs {
		t.Fatalf("after put = %+v", st)
	}
	if storage.Saves != 1 {
		t.Fatalf("saves = %d, want 1", storage.Saves)
	}

	st = decode[settings.State](t, do(t, h, http.MethodPost, "/api/settings/dark-mode", ""))
	if !st.DarkMode {
		t.Fatal("dark mode not toggled")
	}

	st = decode[settings.State](t, do(t, h, http.MethodPost, "/api/settings/reset", ""))
	want := settings.State{RefreshInterval: 30, DarkMode: true, DefaultView: model.ViewDashboard}
	if st != want {
		t.Fatalf("after reset = %+v, want %+v", st, want)
	}
}

func TestSettingsEndpoints_Validation(t *testing.T) {
	t.Parallel()

	storage := &settings.MemoryStorage{}
	_, h := newTestServer(t, &fakeSource{}, storage)

	w := do(t, h, http.MethodPut, "/api/settings", `{"refreshInterval": 2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["error"] != "Interval must be at least 5 seconds" || body["field"] != "refreshInterval" {
		t.Fatalf("body = %v", body)
	}
	if storage.Saves != 0 {
		t.Fatal("invalid settings were persisted")
	}

	if w := do(t, h, http.MethodPut, "/api/settings", `{not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", w.Code)
	}
}

func TestSettingsEndpoints_PersistFailure(t *testing.T) {
	t.Parallel()

	storage := &settings.MemoryStorage{SaveErr: errors.New("disk full")}
	_, h := newTestServer(t, &fakeSource{}, storage)

	w := do(t, h, http.MethodPost, "/api/settings/dark-mode", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	st := decode[settings.State](t, do(t, h, http.MethodGet, "/api/settings", ""))
	if !st.DarkMode {
		t.Fatal("in-memory state should keep the toggle after a persist failure")
	}
}

func TestStartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakeSource{logs: sampleLogs()}, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
