package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// Job is one independent unit of chart production.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name
func (j JobFunc) Name() string { return j.JobName }

// Run calls the wrapped function
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Runner executes jobs on a bounded pool and joins on all of them.
// ⭐ SSOT: every concurrent chart job goes through Runner.Run
type Runner struct {
	workers int
	timeout time.Duration
	logger  *logger.Logger
}

// JobResult is the outcome of one job
type JobResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// NewRunner creates a runner. workers < 1 uses WorkerCount; timeout <= 0 disables the per-job timeout.
func NewRunner(workers int, timeout time.Duration, log *logger.Logger) *Runner {
	if workers < 1 {
		workers = WorkerCount()
	}
	return &Runner{
		workers: workers,
		timeout: timeout,
		logger:  log.WithField("module", "runner"),
	}
}

// Run executes every job and waits for all of them. Any failed job makes the
// run fail; the returned error joins one *contracts.JobError per failed job.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	r.logger.WithFields(map[string]interface{}{
		"jobs":    len(jobs),
		"workers": r.workers,
		"timeout": r.timeout.String(),
	}).Info("Starting jobs")

	jobCh := make(chan Job, len(jobs))
	resultCh := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < r.workers && i < len(jobs); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- r.runOne(ctx, job)
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]JobResult, 0, len(jobs))
	var errs []error
	for res := range resultCh {
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, &contracts.JobError{Job: res.Name, Err: res.Err})
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"succeeded": len(results) - len(errs),
		"failed":    len(errs),
	}).Info("Jobs completed")

	return results, errors.Join(errs...)
}

// runOne runs a job under its own timeout. A job that ignores cancellation
// is abandoned when the timeout fires and reported as failed.
func (r *Runner) runOne(ctx context.Context, job Job) JobResult {
	start := time.Now()
	log := r.logger.WithField("job", job.Name())

	if err := ctx.Err(); err != nil {
		return JobResult{Name: job.Name(), Err: err}
	}

	jobCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- job.Run(jobCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-jobCtx.Done():
		err = fmt.Errorf("job did not finish: %w", jobCtx.Err())
	}

	duration := time.Since(start)
	if err != nil {
		log.WithError(err).WithField("duration", duration.String()).Error("Job failed")
	} else {
		log.WithField("duration", duration.String()).Debug("Job completed")
	}

	return JobResult{Name: job.Name(), Duration: duration, Err: err}
}
