package charts

import (
	"context"
	"time"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/render"
)

// allSeries is the category of an uncolored cumulative trend
const allSeries = "All"

// series describes how rows become a time series
type series[T any] struct {
	X     string // date column name
	Date  func(T) time.Time
	Color string // color column name, "" for a single series
	Key   aggregate.Key[T]
	Y     string
	// Value is summed per bucket; nil counts rows
	Value func(T) float64
}

// bucketed aggregates rows per (bucket, color). Buckets without rows are absent.
func bucketed[T any](rows []T, s series[T], b period.Bucketer) *render.Table {
	keys := []aggregate.Key[T]{aggregate.DateKey(s.Date, b)}
	if s.Color != "" {
		keys = append(keys, s.Key)
	}

	fn := aggregate.Count
	if s.Value != nil {
		fn = aggregate.Sum
	}

	t := newSeriesTable(s)
	for _, g := range aggregate.GroupBy(rows, fn, s.Value, keys...) {
		vals := []interface{}{g.Keys[0]}
		if s.Color != "" {
			vals = append(vals, g.Keys[1])
		}
		t.AddRow(append(vals, g.Value)...)
	}
	return t
}

// cumulative counts rows per (bucket, color) gap-filled over the whole date
// range, as running totals.
func cumulative[T any](rows []T, s series[T], b period.Bucketer) *render.Table {
	key := s.Key
	if s.Color == "" {
		key = func(T) string { return allSeries }
	}

	t := newSeriesTable(s)
	for _, pt := range aggregate.CountCumsumByDate(rows, key, s.Date, b) {
		if s.Color != "" {
			t.AddRow(pt.Bucket, pt.Category, pt.Cumulative)
		} else {
			t.AddRow(pt.Bucket, pt.Cumulative)
		}
	}
	return t
}

func newSeriesTable[T any](s series[T]) *render.Table {
	if s.Color != "" {
		return render.NewTable(s.X, s.Color, s.Y)
	}
	return render.NewTable(s.X, s.Y)
}

// trendChart describes a date-axis chart with per-period zoomed variants
type trendChart struct {
	Kind  render.Kind
	Name  string
	Title string
	Table *render.Table
	X     string
	Y     string
	Color string
	// Latest is the latest date of the data; zoomed variants end there
	Latest time.Time
	// MarkerDays places a marker this many days before Latest; 0 for none
	MarkerDays int
}

// emitTrend writes the chart over the whole range, then once per period with
// the x axis zoomed to the trailing window.
func (p *Plotter) emitTrend(ctx context.Context, c trendChart) error {
	opts := render.Options{XLabel: c.X, YLabel: c.Y}
	if c.MarkerDays > 0 && !c.Latest.IsZero() {
		opts.Markers = []render.Marker{{
			Value: period.Format(period.AddDays(c.Latest, -c.MarkerDays)),
			Label: formatDays(c.MarkerDays),
		}}
	}

	req := render.Request{
		Kind:    c.Kind,
		Name:    c.Name,
		Title:   c.Title,
		Table:   c.Table,
		X:       c.X,
		Y:       c.Y,
		Color:   c.Color,
		Options: opts,
	}
	if err := p.emit(ctx, req); err != nil {
		return err
	}

	for _, days := range p.settings.PeriodDays {
		zoomed := req
		zoomed.Name = PeriodName(c.Name, days)
		if !c.Latest.IsZero() {
			zoomed.Options.XStart = period.Format(period.AddDays(c.Latest, -days))
			zoomed.Options.XEnd = period.Format(c.Latest)
		}
		if err := p.emit(ctx, zoomed); err != nil {
			return err
		}
	}
	return nil
}
