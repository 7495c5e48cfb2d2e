package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineFile string
	logLevel     string
	dataDir      string
	outputDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "COVID-19 tracker for the DOH data drop",
	Long: `Tracker downloads the daily DOH COVID-19 data drop, derives case and
testing tables and publishes charts and summary tables.

Usage:
  go run ./cmd/tracker [command]

Examples:
  go run ./cmd/tracker run
  go run ./cmd/tracker run --skip-download --rebuild
  go run ./cmd/tracker download --folder-id 1w_O-vweBFbqCgzgmCpux2F0HVB4P6ni2
  go run ./cmd/tracker schedule
  go run ./cmd/tracker serve --refresh`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&pipelineFile, "config", "", "pipeline settings YAML (default: built-in settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data-drop and cache directory (default $DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "published output directory (default $OUTPUT_DIR)")
}
