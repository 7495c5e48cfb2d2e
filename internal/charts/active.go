package charts

import (
	"context"
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/render"
)

// ActiveColumn is the y column of the active case trend
const ActiveColumn = "ActiveCount"

// Active writes the active case trend per region and the current active case
// breakdowns. The breakdowns describe the present, so they have no period variants.
func (p *Plotter) Active(ctx context.Context, cases []contracts.CaseRecord) error {
	points, err := aggregate.ActiveCases(cases, p.settings.Bucketer(), p.settings.SampleWeekday)
	if err != nil {
		return err
	}

	t := render.NewTable("Date", string(contracts.ColRegion), ActiveColumn)
	for _, pt := range points {
		t.AddRow(pt.Date, pt.Region, pt.Active)
	}
	latest, _ := period.MaxDate(points, func(pt aggregate.ActivePoint) time.Time { return pt.Date })

	err = p.emitTrend(ctx, trendChart{
		Kind:       render.KindLine,
		Name:       "Active",
		Title:      "Active Cases",
		Table:      t,
		X:          "Date",
		Y:          ActiveColumn,
		Color:      string(contracts.ColRegion),
		Latest:     latest,
		MarkerDays: p.settings.TrendMarkerDays,
	})
	if err != nil {
		return err
	}

	active := filterCases(cases, func(r contracts.CaseRecord) bool {
		return r.CaseStatus == contracts.StatusActive
	})

	for _, area := range Areas {
		top := aggregate.FilterTop(active, caseKey(area), p.settings.TopN, aggregate.Count, nil)
		req := p.caseBars(top, "TopActive"+string(area), fmt.Sprintf("Top %d %s", p.settings.TopN, area), area, contracts.ColHealthStatus, barOrder{byTotal: true})
		if err := p.emit(ctx, req); err != nil {
			return err
		}
	}

	req := p.caseBars(active, "ActiveAgeGroup", "Active Cases by Age Group", contracts.ColAgeGroup, contracts.ColHealthStatus, barOrder{categories: p.settings.AgeGroups})
	if err := p.emit(ctx, req); err != nil {
		return err
	}

	return p.emit(ctx, healthStatusPie(active, "ActivePie", "Active Cases Health Status"))
}
