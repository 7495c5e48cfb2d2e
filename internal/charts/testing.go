package charts

import (
	"context"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/render"
)

func reportDate(r contracts.TestingRecord) time.Time { return r.ReportDate }

func testingRegion(r contracts.TestingRecord) string { return r.Region }

// Testing writes the daily testing output per region, summed per bucket, and
// the cumulative counts sampled on the weekly sample day.
func (p *Plotter) Testing(ctx context.Context, testing []contracts.TestingRecord) error {
	latest, _ := period.MaxDate(testing, reportDate)

	for _, col := range contracts.DailyTestingColumns {
		title := strings.ReplaceAll(strings.TrimPrefix(string(col), "daily_output_"), "_", " ")
		if err := p.testingTrend(ctx, testing, col, title, latest); err != nil {
			return err
		}
	}

	sampled := period.FilterDayOfWeek(testing, reportDate, p.settings.SampleWeekday)
	for _, col := range contracts.CumulativeTestingColumns {
		title := strings.ReplaceAll(string(col), "_", " ")
		if err := p.testingTrend(ctx, sampled, col, title, latest); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plotter) testingTrend(ctx context.Context, rows []contracts.TestingRecord, col contracts.TestingColumn, title string, latest time.Time) error {
	s := series[contracts.TestingRecord]{
		X:     contracts.ColReportDate,
		Date:  reportDate,
		Color: contracts.ColTestRegion,
		Key:   testingRegion,
		Y:     string(col),
		Value: func(r contracts.TestingRecord) float64 { return r.Value(col) },
	}
	return p.emitTrend(ctx, trendChart{
		Kind:   render.KindArea,
		Name:   string(col),
		Title:  title,
		Table:  bucketed(rows, s, p.settings.Bucketer()),
		X:      s.X,
		Y:      s.Y,
		Color:  s.Color,
		Latest: latest,
	})
}
