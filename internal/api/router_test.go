package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/internal/api/handlers"
	"github.com/covid19trackerph/tracker/internal/scheduler"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// fakeRuns is an in-memory scheduler view
type fakeRuns struct {
	mu      sync.Mutex
	results []scheduler.JobResult
	running bool
	started chan struct{}
}

func (f *fakeRuns) GetJobStats() map[string]scheduler.JobStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]scheduler.JobStats{"refresh": {JobName: "refresh", TotalRuns: len(f.results)}}
}

func (f *fakeRuns) GetJobHistory(jobName string, n int) ([]scheduler.JobResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.results) {
		n = len(f.results)
	}
	return f.results[len(f.results)-n:], nil
}

func (f *fakeRuns) RunJob(jobName string) (scheduler.JobResult, error) {
	close(f.started)
	return scheduler.JobResult{JobName: jobName, Success: true}, nil
}

func (f *fakeRuns) Running(jobName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func newTestRouter(t *testing.T, runs handlers.RunSource) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.html"), []byte("<table></table>"), 0o644))
	return NewRouter(dir, handlers.NewRunsHandler(runs, "refresh", logger.Nop()), logger.Nop()), dir
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServesOutputDir(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/summary.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<table></table>", rec.Body.String())
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/missing.svg").Code)
}

func TestListRuns(t *testing.T) {
	base := time.Date(2021, 10, 10, 17, 0, 0, 0, time.UTC)
	runs := &fakeRuns{results: []scheduler.JobResult{
		{JobName: "refresh", StartTime: base, Success: false, Error: "download stage failed"},
		{JobName: "refresh", StartTime: base.Add(24 * time.Hour), Success: true},
	}}
	router, _ := newTestRouter(t, runs)

	rec := serve(router, http.MethodGet, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Scheduled)
	require.Len(t, resp.Runs, 2)
	assert.True(t, resp.Runs[0].Success, "newest first")
	assert.Equal(t, "download stage failed", resp.Runs[1].Error)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 2, resp.Stats.TotalRuns)

	rec = serve(router, http.MethodGet, "/api/runs?limit=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/runs?limit=zero").Code)
}

func TestListRunsWithoutScheduler(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scheduled":false,"running":false,"runs":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodPost, "/api/runs").Code)
}

func TestTriggerRun(t *testing.T) {
	runs := &fakeRuns{started: make(chan struct{})}
	router, _ := newTestRouter(t, runs)

	rec := serve(router, http.MethodPost, "/api/runs")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-runs.started:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh was not started")
	}

	runs.mu.Lock()
	runs.running = true
	runs.mu.Unlock()
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/api/runs").Code)
}
