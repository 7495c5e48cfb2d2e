package commands

import (
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/tracker"
)

const rule = "═══════════════════════════════════════════════════════════"

// printRunSummary prints the outcome of a run to stdout
func printRunSummary(res *tracker.Result, outputDir string) {
	failed := 0
	var slowest time.Duration
	slowestJob := ""
	for _, j := range res.Jobs {
		if j.Err != nil {
			failed++
		}
		if j.Duration > slowest {
			slowest, slowestJob = j.Duration, j.Name
		}
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("  Tracker run")
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Run ID     : %s\n", res.RunID)
	fmt.Printf("  Started    : %s\n", res.StartedAt.Format(time.RFC3339))
	fmt.Printf("  Downloaded : %d files\n", len(res.Downloaded))
	fmt.Printf("  Cases      : %d rows\n", res.Cases)
	fmt.Printf("  Testing    : %d rows\n", res.Testing)
	fmt.Printf("  Jobs       : %d (%d failed)\n", len(res.Jobs), failed)
	if slowestJob != "" {
		fmt.Printf("  Slowest    : %s (%s)\n", slowestJob, slowest.Round(time.Millisecond))
	}
	fmt.Printf("  Output     : %s\n", outputDir)
	fmt.Printf("  Duration   : %s\n", res.Duration.Round(time.Millisecond))
	fmt.Println(rule)
}
