// Package charts turns the derived tables into chart requests.
//
// A Plotter never touches the file system: every artifact goes through the
// injected render.WriteFunc.
package charts

import (
	"context"
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/pipeline"
	"github.com/covid19trackerph/tracker/internal/render"
	"github.com/covid19trackerph/tracker/internal/trackerconfig"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

// CountColumn is the y column of count aggregates
const CountColumn = "Count"

// Plotter builds the chart jobs of a run
type Plotter struct {
	settings trackerconfig.Settings
	write    render.WriteFunc
	logger   *logger.Logger
}

// NewPlotter creates a Plotter writing through write
func NewPlotter(settings trackerconfig.Settings, write render.WriteFunc, log *logger.Logger) *Plotter {
	if log == nil {
		log = logger.Nop()
	}
	return &Plotter{
		settings: settings,
		write:    write,
		logger:   log.WithField("module", "charts"),
	}
}

// Jobs returns the independent chart jobs over the derived tables.
// The tables are shared read-only between jobs.
func (p *Plotter) Jobs(cases []contracts.CaseRecord, testing []contracts.TestingRecord) []pipeline.Job {
	return []pipeline.Job{
		pipeline.JobFunc{JobName: "summary", Fn: func(ctx context.Context) error {
			return p.Summary(ctx, cases, testing)
		}},
		pipeline.JobFunc{JobName: "active", Fn: func(ctx context.Context) error {
			return p.Active(ctx, cases)
		}},
		pipeline.JobFunc{JobName: "reporting", Fn: func(ctx context.Context) error {
			return p.Reporting(ctx, cases)
		}},
		pipeline.JobFunc{JobName: "testing", Fn: func(ctx context.Context) error {
			return p.Testing(ctx, testing)
		}},
		pipeline.JobFunc{JobName: "confirmed", Fn: func(ctx context.Context) error {
			return p.Cases(ctx, cases, ConfirmedCharts())
		}},
		pipeline.JobFunc{JobName: "recovery", Fn: func(ctx context.Context) error {
			return p.Cases(ctx, cases, RecoveryCharts())
		}},
		pipeline.JobFunc{JobName: "death", Fn: func(ctx context.Context) error {
			return p.Cases(ctx, cases, DeathCharts())
		}},
	}
}

func (p *Plotter) emit(ctx context.Context, req render.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.WithField("name", req.Name).Debug("Plotting")
	if err := p.write(ctx, req); err != nil {
		return fmt.Errorf("write %s: %w", req.Name, err)
	}
	return nil
}

// PeriodName is the artifact name of a period variant
func PeriodName(name string, days int) string {
	return fmt.Sprintf("%s%ddays", name, days)
}

// forPeriods calls plot for all rows and for the rows of each configured
// trailing period on date, with the period suffix appended to the name.
func forPeriods[T any](p *Plotter, rows []T, date func(T) time.Time, plot func(rows []T, suffix string) error) error {
	if err := plot(rows, ""); err != nil {
		return err
	}
	for _, days := range p.settings.PeriodDays {
		if err := plot(period.FilterLatest(rows, date, days, true), fmt.Sprintf("%ddays", days)); err != nil {
			return err
		}
	}
	return nil
}

func caseDate(col contracts.CaseColumn) func(contracts.CaseRecord) time.Time {
	return func(r contracts.CaseRecord) time.Time { return r.Date(col) }
}

func caseKey(col contracts.CaseColumn) aggregate.Key[contracts.CaseRecord] {
	return func(r contracts.CaseRecord) string { return r.Category(col) }
}

func filterCases(rows []contracts.CaseRecord, keep func(contracts.CaseRecord) bool) []contracts.CaseRecord {
	if keep == nil {
		return rows
	}
	out := make([]contracts.CaseRecord, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func formatDays(n int) string {
	return fmt.Sprintf("%d days", n)
}
