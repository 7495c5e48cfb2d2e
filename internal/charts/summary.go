package charts

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/covid19trackerph/tracker/internal/aggregate"
	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/render"
)

// SummaryColumns are the columns of the summary table
var SummaryColumns = []string{"Statistic", "Cumulative", "Latest Report"}

const none = "-"

var numbers = message.NewPrinter(language.English)

// Stats are the headline numbers of a run
type Stats struct {
	LastCaseReported time.Time
	Confirmed        int
	NewConfirmed     int
	Active           int
	Deaths           int
	// CaseDoublingTime is NaN when it cannot be computed
	CaseDoublingTime float64

	// CaseReproductionNumber is estimated from CaseDoublingTime
	CaseReproductionNumber float64

	LastTestReport       time.Time
	Samples              int64
	LatestSamples        int64
	Individuals          int64
	LatestIndividuals    int64
	Positive             int64
	LatestPositive       int64
	PositivityRate       float64 // percent
	LatestPositivityRate float64 // percent
	PositiveDoublingTime float64
}

// ComputeStats computes the summary numbers. The case doubling time uses the
// cumulative onset counts without the latest excludeDays days, which are
// still being backfilled.
func ComputeStats(cases []contracts.CaseRecord, testing []contracts.TestingRecord, excludeDays int) Stats {
	var s Stats
	s.LastCaseReported, _ = period.MaxDate(cases, caseDate(contracts.ColDateRepConf))
	s.Confirmed = len(cases)
	for _, r := range cases {
		if r.CaseRepType == contracts.RepNewCase {
			s.NewConfirmed++
		}
		if r.CaseStatus == contracts.StatusActive {
			s.Active++
		}
		if r.HealthStatus == contracts.HealthDied {
			s.Deaths++
		}
	}

	onset := caseDate(contracts.ColDateOnset)
	settled := period.FilterLatest(cases, onset, excludeDays, false)
	s.CaseDoublingTime = doublingTime(runningSum(dailyTotals(settled, onset, func(contracts.CaseRecord) float64 { return 1 })))
	s.CaseReproductionNumber = math.NaN()
	if s.CaseDoublingTime > 0 {
		s.CaseReproductionNumber = aggregate.ReproductionNumber(s.CaseDoublingTime)
	}

	s.LastTestReport, _ = period.MaxDate(testing, reportDate)
	latest := period.FilterLatest(testing, reportDate, 1, true)
	for _, r := range testing {
		s.Samples += r.DailySamplesTested
		s.Individuals += r.DailyUniqueIndividuals
		s.Positive += r.DailyPositiveIndividuals
	}
	for _, r := range latest {
		s.LatestSamples += r.DailySamplesTested
		s.LatestIndividuals += r.DailyUniqueIndividuals
		s.LatestPositive += r.DailyPositiveIndividuals
	}
	s.PositivityRate = percent(s.Positive, s.Individuals)
	s.LatestPositivityRate = percent(s.LatestPositive, s.LatestIndividuals)
	s.PositiveDoublingTime = doublingTime(dailyTotals(testing, reportDate, func(r contracts.TestingRecord) float64 {
		return float64(r.CumulativePositiveIndividuals)
	}))
	return s
}

// dailyTotals sums value per date, in date order
func dailyTotals[T any](rows []T, date func(T) time.Time, value func(T) float64) []float64 {
	totals := make(map[time.Time]float64)
	for _, r := range rows {
		if d := date(r); !d.IsZero() {
			totals[d] += value(r)
		}
	}
	dates := make([]time.Time, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = totals[d]
	}
	return out
}

func runningSum(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		total += v
		out[i] = total
	}
	return out
}

func doublingTime(series []float64) float64 {
	if td, ok := aggregate.DoublingTime(series); ok {
		return td
	}
	return math.NaN()
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return aggregate.Round(float64(part)/float64(whole)*100, 2)
}

// Summary writes the summary table
func (p *Plotter) Summary(ctx context.Context, cases []contracts.CaseRecord, testing []contracts.TestingRecord) error {
	s := ComputeStats(cases, testing, p.settings.DoublingExcludeDays)
	p.logger.WithFields(map[string]interface{}{
		"confirmed": s.Confirmed,
		"active":    s.Active,
		"deaths":    s.Deaths,
	}).Info("Summary computed")
	return p.emit(ctx, render.Request{
		Kind:  render.KindTable,
		Name:  "summary",
		Title: "Summary",
		Table: SummaryTable(s),
	})
}

// SummaryTable lays out the stats as Statistic / Cumulative / Latest Report rows
func SummaryTable(s Stats) *render.Table {
	t := render.NewTable(SummaryColumns...)
	t.AddRow("Last Case Reported", none, s.LastCaseReported)
	t.AddRow("Confirmed Cases", count(int64(s.Confirmed)), count(int64(s.NewConfirmed)))
	t.AddRow("Active Cases", none, count(int64(s.Active)))
	t.AddRow("Deaths", count(int64(s.Deaths)), none)
	t.AddRow("Case Doubling Time (days)", none, decimal(s.CaseDoublingTime))
	t.AddRow("Case Reproduction Number", none, decimal(s.CaseReproductionNumber))
	t.AddRow("Last Test Report", none, s.LastTestReport)
	t.AddRow("Samples Tested", count(s.Samples), count(s.LatestSamples))
	t.AddRow("Individuals Tested", count(s.Individuals), count(s.LatestIndividuals))
	t.AddRow("Positive Individuals", count(s.Positive), count(s.LatestPositive))
	t.AddRow("Positivity Rate (%)", s.PositivityRate, s.LatestPositivityRate)
	t.AddRow("Positive Individuals Doubling Time (days)", none, decimal(s.PositiveDoublingTime))
	return t
}

// count formats with thousands separators, e.g. 1,234,567
func count(n int64) string {
	return numbers.Sprintf("%d", n)
}

func decimal(v float64) string {
	if math.IsNaN(v) {
		return none
	}
	return render.FormatValue(aggregate.Round(v, 2))
}
