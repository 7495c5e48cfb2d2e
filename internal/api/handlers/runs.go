package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/covid19trackerph/tracker/internal/scheduler"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// RunSource is the scheduler view the runs endpoints need
type RunSource interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string, n int) ([]scheduler.JobResult, error)
	RunJob(jobName string) (scheduler.JobResult, error)
	Running(jobName string) bool
}

// RunsHandler reports and triggers refresh runs
type RunsHandler struct {
	runs   RunSource
	job    string
	logger *logger.Logger
}

// NewRunsHandler creates a handler for job. runs may be nil when the
// server runs without a scheduler.
func NewRunsHandler(runs RunSource, job string, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		runs:   runs,
		job:    job,
		logger: log,
	}
}

// RunsResponse is the payload of GET /api/runs
type RunsResponse struct {
	Scheduled bool                  `json:"scheduled"`
	Running   bool                  `json:"running"`
	Stats     *scheduler.JobStats   `json:"stats,omitempty"`
	Runs      []scheduler.JobResult `json:"runs"`
}

const defaultRunLimit = 20

// List returns the latest runs, newest first
// GET /api/runs?limit=20
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	resp := RunsResponse{Runs: []scheduler.JobResult{}}
	if h.runs == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	limit := defaultRunLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.runs.GetJobHistory(h.job, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get run history")
		respondError(w, http.StatusNotFound, "No scheduled refresh")
		return
	}
	for i := len(history) - 1; i >= 0; i-- {
		resp.Runs = append(resp.Runs, history[i])
	}

	resp.Scheduled = true
	resp.Running = h.runs.Running(h.job)
	if stats, ok := h.runs.GetJobStats()[h.job]; ok {
		resp.Stats = &stats
	}

	respondJSON(w, http.StatusOK, resp)
}

// Trigger starts a refresh outside of its schedule. The run continues in the
// scheduler after the response; its result shows up in List.
// POST /api/runs
func (h *RunsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler is not enabled")
		return
	}
	if h.runs.Running(h.job) {
		respondError(w, http.StatusConflict, "A refresh is already running")
		return
	}

	go func() {
		if _, err := h.runs.RunJob(h.job); err != nil && !errors.Is(err, scheduler.ErrJobRunning) {
			h.logger.WithError(err).Error("Triggered refresh failed to start")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
