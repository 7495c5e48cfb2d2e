package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/covid19trackerph/tracker/internal/api"
	"github.com/covid19trackerph/tracker/internal/api/handlers"
	"github.com/covid19trackerph/tracker/internal/scheduler"
	"github.com/covid19trackerph/tracker/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the refresh every day",
	Long: `Starts a daemon that runs the full refresh on a cron schedule.
Failed runs are retried; the schedule uses six fields with seconds.

The daemon can be stopped with Ctrl+C.

Example:
  go run ./cmd/tracker schedule
  go run ./cmd/tracker schedule --cron "0 30 17 * * *" --run-now`,
	RunE: runSchedule,
}

var (
	cronSpec   string
	runNow     bool
	retries    int
	retryDelay time.Duration
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&cronSpec, "cron", "", "refresh schedule (default $REFRESH_SCHEDULE)")
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "run a refresh immediately after starting")
	addRetryFlags(scheduleCmd)
}

func addRetryFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&retries, "retries", 3, "retries of a failed refresh")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 15*time.Minute, "wait between retries")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, job, err := a.scheduler()
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	fmt.Printf("Refresh scheduled: %s\n", job.Schedule())
	if next, ok := sched.NextRun(job.Name()); ok && !next.IsZero() {
		fmt.Printf("Next run: %s\n", next.Format(time.RFC3339))
	}
	fmt.Println("Press Ctrl+C to stop")

	if runNow {
		go func() {
			if _, err := sched.RunJob(job.Name()); err != nil && !errors.Is(err, scheduler.ErrJobRunning) {
				a.log.WithError(err).Error("Immediate refresh failed to start")
			}
		}()
	}

	<-ctx.Done()
	return nil
}

// scheduler registers the refresh job on a new scheduler
func (a *app) scheduler() (*scheduler.Scheduler, *jobs.RefreshJob, error) {
	spec := a.cfg.RefreshSchedule
	if cronSpec != "" {
		spec = cronSpec
	}

	job := jobs.NewRefreshJob(a.tracker(), a.runOptions(), spec, a.log)
	sched := scheduler.New(a.log).WithRetry(retries, retryDelay)
	if err := sched.AddJob(job); err != nil {
		return nil, nil, fmt.Errorf("schedule refresh: %w", err)
	}
	return sched, job, nil
}

// newServer creates the preview server. sched may be nil.
func (a *app) newServer(sched *scheduler.Scheduler, jobName string) *api.Server {
	var runs handlers.RunSource
	if sched != nil {
		runs = sched
	}
	router := api.NewRouter(a.cfg.OutputDir, handlers.NewRunsHandler(runs, jobName, a.log), a.log)
	return api.New(a.cfg, a.log, router)
}
