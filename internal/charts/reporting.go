package charts

import (
	"context"
	"fmt"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/render"
)

// ReportingDelays are the day-count columns charted as histograms, with their titles
var ReportingDelays = []struct {
	Column contracts.CaseColumn
	Title  string
}{
	{contracts.ColSpecimenToRepConf, "Specimen Collection to Reporting"},
	{contracts.ColSpecimenToRelease, "Specimen Collection To Result Release"},
	{contracts.ColReleaseToRepConf, "Result Release To Reporting"},
}

// Reporting writes the reporting delay histograms, with periods filtered on
// the report date.
func (p *Plotter) Reporting(ctx context.Context, cases []contracts.CaseRecord) error {
	for _, d := range ReportingDelays {
		col := d.Column
		err := forPeriods(p, cases, caseDate(contracts.ColDateRepConf), func(rows []contracts.CaseRecord, suffix string) error {
			return p.emit(ctx, histogram(rows, col, d.Title, string(col)+suffix))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func histogram(rows []contracts.CaseRecord, col contracts.CaseColumn, title, name string) render.Request {
	t := render.NewTable(string(col))
	values := make([]float64, 0, len(rows))
	sameDay := false
	for _, r := range rows {
		if days, ok := r.Days(col); ok {
			t.AddRow(days)
			values = append(values, float64(days))
			sameDay = sameDay || days == 0
		}
	}

	var markers []render.Marker
	if len(values) > 0 {
		for _, pct := range []float64{50, 90} {
			v := aggregate.Round(aggregate.Percentile(values, pct), 2)
			markers = append(markers, render.Marker{
				Value: render.FormatValue(v),
				Label: fmt.Sprintf("%.0fth percentile = %s", pct, render.FormatValue(v)),
			})
		}
	}

	return render.Request{
		Kind:  render.KindHistogram,
		Name:  name,
		Title: title,
		Table: t,
		X:     string(col),
		Options: render.Options{
			// a log axis cannot place same-day reports or a 0 marker
			LogX:    len(values) > 0 && !sameDay,
			Markers: markers,
			XLabel:  title,
			YLabel:  CountColumn,
		},
	}
}
