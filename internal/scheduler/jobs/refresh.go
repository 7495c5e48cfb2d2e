package jobs

import (
	"context"
	"fmt"

	"github.com/covid19trackerph/tracker/internal/tracker"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// Runner is the part of tracker.Tracker the refresh job needs
type Runner interface {
	Run(ctx context.Context, opts tracker.Options) (*tracker.Result, error)
}

// RefreshJob downloads the latest data drop and republishes every chart
type RefreshJob struct {
	runner   Runner
	opts     tracker.Options
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a refresh job running with opts on schedule
func NewRefreshJob(runner Runner, opts tracker.Options, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		runner:   runner,
		opts:     opts,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one tracker run. Only the first run of a process honors Rebuild.
func (j *RefreshJob) Run(ctx context.Context) error {
	res, err := j.runner.Run(ctx, j.opts)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	j.opts.Rebuild = false

	j.logger.WithFields(map[string]interface{}{
		"run_id":   res.RunID,
		"cases":    res.Cases,
		"testing":  res.Testing,
		"duration": res.Duration.String(),
	}).Info("Scheduled refresh completed")
	return nil
}
