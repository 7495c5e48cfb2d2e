package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download the data drop and publish every chart",
	Long: `Runs one full refresh:

  1. download  - fetch the latest data drop into the data directory
  2. prepare   - derive the case and testing tables (cached between runs)
  3. plot      - write every chart and table into a staging directory
  4. publish   - move the staged artifacts into the output directory

A failed run leaves the published output untouched.

Example:
  go run ./cmd/tracker run
  go run ./cmd/tracker run --skip-download --workers 4
  go run ./cmd/tracker run --rebuild --job-timeout 20m`,
	RunE: runTracker,
}

var (
	skipDownload bool
	folderID     string
	rebuild      bool
	workers      int
	jobTimeout   time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipDownload, "skip-download", false, "use the files already in the data directory")
	runCmd.Flags().StringVar(&folderID, "folder-id", "", "data-drop folder id (default: resolve through the readme)")
	runCmd.Flags().BoolVar(&rebuild, "rebuild", false, "ignore cached tables and replace the output directory")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default $WORKERS or CPUs - 1)")
	runCmd.Flags().DurationVar(&jobTimeout, "job-timeout", 0, "timeout per chart job (default $JOB_TIMEOUT)")
}

func runTracker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.runOptions()
	opts.SkipDownload = skipDownload
	opts.FolderID = folderID
	opts.Rebuild = opts.Rebuild || rebuild
	if cmd.Flags().Changed("workers") {
		opts.Workers = workers
	}
	if jobTimeout > 0 {
		opts.JobTimeout = jobTimeout
	}

	res, err := a.tracker().Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("run %s: %w", res.RunID, err)
	}

	printRunSummary(res, opts.OutputDir)
	return nil
}
