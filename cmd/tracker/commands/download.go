package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest data drop only",
	Long: `Finds the current data-drop folder through the published readme and
downloads every file into the data directory with the publication date
removed from its name.

Example:
  go run ./cmd/tracker download
  go run ./cmd/tracker download --folder-id 1w_O-vweBFbqCgzgmCpux2F0HVB4P6ni2`,
	RunE: runDownload,
}

var downloadFolderID string

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadFolderID, "folder-id", "", "data-drop folder id (default: resolve through the readme)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := a.downloader().Download(ctx, downloadFolderID)
	if err != nil {
		a.log.WithError(err).Error("Download failed")
		return fmt.Errorf("download: %w", err)
	}

	fmt.Printf("Downloaded %d files into %s\n", len(paths), a.cfg.DataDir)
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
	return nil
}
