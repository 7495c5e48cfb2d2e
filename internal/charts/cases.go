package charts

import (
	"context"
	"fmt"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/render"
)

// CaseChartOptions configures the chart family of one case outcome
type CaseChartOptions struct {
	Title string
	// Filter selects the records of the outcome; nil keeps every record
	Filter func(contracts.CaseRecord) bool

	// TrendColumn is the date of the trend charts, also their name prefix
	TrendColumn contracts.CaseColumn
	// TrendColors gets one count and one cumulative trend per column
	TrendColors []contracts.CaseColumn

	// AreaFileName prefixes the top-N charts of each area column
	AreaFileName string
	AreaColor    contracts.CaseColumn // "" for single-color bars

	AgeGroupFileName string
	AgeGroupColor    contracts.CaseColumn

	// HealthStatusFileName names the health status pie; "" skips it
	HealthStatusFileName string

	// PeriodColumn is the date the period variants are filtered on
	PeriodColumn contracts.CaseColumn
}

// Areas are the columns of the top-N charts
var Areas = []contracts.CaseColumn{contracts.ColCityMunRes, contracts.ColRegion}

// ConfirmedCharts charts every confirmed case by onset date
func ConfirmedCharts() CaseChartOptions {
	return CaseChartOptions{
		Title:                "Confirmed Cases",
		TrendColumn:          contracts.ColDateOnset,
		TrendColors:          []contracts.CaseColumn{contracts.ColCaseRepType, contracts.ColRegion, contracts.ColOnsetProxy},
		AreaFileName:         "TopConfirmedCase",
		AreaColor:            contracts.ColHealthStatus,
		AgeGroupFileName:     "ConfirmedAgeGroup",
		AgeGroupColor:        contracts.ColHealthStatus,
		HealthStatusFileName: "ConfirmedPie",
		PeriodColumn:         contracts.ColDateOnset,
	}
}

// RecoveryCharts charts recovered cases by recovery date
func RecoveryCharts() CaseChartOptions {
	return CaseChartOptions{
		Title:            "Recovery",
		Filter:           healthStatus(contracts.HealthRecovered),
		TrendColumn:      contracts.ColDateRecover,
		TrendColors:      []contracts.CaseColumn{contracts.ColRegion, contracts.ColRecoverProxy},
		AreaFileName:     "TopRecovery",
		AgeGroupFileName: "RecoveryAgeGroup",
		PeriodColumn:     contracts.ColDateOnset,
	}
}

// DeathCharts charts deaths by date of death
func DeathCharts() CaseChartOptions {
	return CaseChartOptions{
		Title:            "Death",
		Filter:           healthStatus(contracts.HealthDied),
		TrendColumn:      contracts.ColDateDied,
		TrendColors:      []contracts.CaseColumn{contracts.ColRegion},
		AreaFileName:     "TopDeath",
		AgeGroupFileName: "DeathAgeGroup",
		PeriodColumn:     contracts.ColDateOnset,
	}
}

func healthStatus(status string) func(contracts.CaseRecord) bool {
	return func(r contracts.CaseRecord) bool { return r.HealthStatus == status }
}

// Cases writes the trend, top area, age group and health status charts of
// one case outcome.
func (p *Plotter) Cases(ctx context.Context, all []contracts.CaseRecord, opts CaseChartOptions) error {
	rows := filterCases(all, opts.Filter)
	periodDate := caseDate(opts.PeriodColumn)

	if err := p.caseTrends(ctx, rows, opts); err != nil {
		return err
	}

	for _, area := range Areas {
		top := aggregate.FilterTop(rows, caseKey(area), p.settings.TopN, aggregate.Count, nil)
		name := opts.AreaFileName + string(area)
		err := forPeriods(p, top, periodDate, func(rows []contracts.CaseRecord, suffix string) error {
			return p.emit(ctx, p.caseBars(rows, name+suffix, fmt.Sprintf("Top %d %s", p.settings.TopN, area), area, opts.AreaColor, barOrder{byTotal: true}))
		})
		if err != nil {
			return err
		}
	}

	err := forPeriods(p, rows, periodDate, func(rows []contracts.CaseRecord, suffix string) error {
		return p.emit(ctx, p.caseBars(rows, opts.AgeGroupFileName+suffix, opts.Title+" by Age Group", contracts.ColAgeGroup, opts.AgeGroupColor, barOrder{categories: p.settings.AgeGroups}))
	})
	if err != nil {
		return err
	}

	if opts.HealthStatusFileName == "" {
		return nil
	}
	return forPeriods(p, rows, periodDate, func(rows []contracts.CaseRecord, suffix string) error {
		return p.emit(ctx, healthStatusPie(rows, opts.HealthStatusFileName+suffix, opts.Title+" Health Status"))
	})
}

// caseTrends writes a count and a cumulative trend per trend color
func (p *Plotter) caseTrends(ctx context.Context, rows []contracts.CaseRecord, opts CaseChartOptions) error {
	date := caseDate(opts.TrendColumn)
	latest, _ := period.MaxDate(rows, date)
	b := p.settings.Bucketer()
	name := string(opts.TrendColumn)

	for _, color := range opts.TrendColors {
		s := series[contracts.CaseRecord]{
			X:     string(opts.TrendColumn),
			Date:  date,
			Color: string(color),
			Key:   caseKey(color),
			Y:     CountColumn,
		}
		trends := []trendChart{
			{Name: name + string(color), Title: opts.Title, Table: bucketed(rows, s, b)},
			{Name: name + "Cumulative" + string(color), Title: opts.Title + " - Cumulative", Table: cumulative(rows, s, b)},
		}
		for _, c := range trends {
			c.Kind = render.KindArea
			c.X, c.Y, c.Color = s.X, s.Y, s.Color
			c.Latest = latest
			c.MarkerDays = p.settings.TrendMarkerDays
			if err := p.emitTrend(ctx, c); err != nil {
				return err
			}
		}
	}
	return nil
}

type barOrder struct {
	byTotal    bool
	categories []string
}

// caseBars counts records per y category, stacked by color when set
func (p *Plotter) caseBars(rows []contracts.CaseRecord, name, title string, y, color contracts.CaseColumn, order barOrder) render.Request {
	keys := []aggregate.Key[contracts.CaseRecord]{caseKey(y)}
	cols := []string{string(y)}
	if color != "" {
		keys = append(keys, caseKey(color))
		cols = append(cols, string(color))
	}

	t := render.NewTable(append(cols, CountColumn)...)
	for _, g := range aggregate.GroupCount(rows, keys...) {
		vals := make([]interface{}, 0, len(g.Keys)+1)
		for _, k := range g.Keys {
			vals = append(vals, k)
		}
		t.AddRow(append(vals, g.Value)...)
	}

	return render.Request{
		Kind:  render.KindBar,
		Name:  name,
		Title: title,
		Table: t,
		X:     string(y),
		Y:     CountColumn,
		Color: string(color),
		Options: render.Options{
			Horizontal:  true,
			SortByTotal: order.byTotal,
			XOrder:      order.categories,
			YLabel:      CountColumn,
		},
	}
}

func healthStatusPie(rows []contracts.CaseRecord, name, title string) render.Request {
	t := render.NewTable(string(contracts.ColHealthStatus), CountColumn)
	for _, g := range aggregate.GroupCount(rows, caseKey(contracts.ColHealthStatus)) {
		t.AddRow(g.Keys[0], g.Value)
	}
	return render.Request{
		Kind:  render.KindPie,
		Name:  name,
		Title: title,
		Table: t,
		X:     string(contracts.ColHealthStatus),
		Y:     CountColumn,
	}
}
