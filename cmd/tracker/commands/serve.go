package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/covid19trackerph/tracker/internal/scheduler"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the published charts",
	Long: `Starts a preview server for the output directory.

Endpoints:
  GET  /health     - Health check
  GET  /api/runs   - Refresh history (with --refresh)
  POST /api/runs   - Start a refresh now (with --refresh)
  GET  /*          - Files of the output directory

Example:
  go run ./cmd/tracker serve
  go run ./cmd/tracker serve --port 8080 --refresh`,
	RunE: runServe,
}

var (
	servePort string
	refresh   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT)")
	serveCmd.Flags().BoolVar(&refresh, "refresh", false, "also run the scheduled refresh in this process")
	serveCmd.Flags().StringVar(&cronSpec, "cron", "", "refresh schedule (default $REFRESH_SCHEDULE)")
	addRetryFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	var sched *scheduler.Scheduler
	jobName := ""
	if refresh {
		s, job, err := a.scheduler()
		if err != nil {
			return err
		}
		sched, jobName = s, job.Name()
		sched.Start()
		defer sched.Stop()
	}

	server := a.newServer(sched, jobName)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("Serving %s on :%s\n", a.cfg.OutputDir, a.cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
