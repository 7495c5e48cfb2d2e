package contracts

import "time"

// RawTesting is one line of the testing aggregates CSV, fields as read.
type RawTesting struct {
	FacilityName                  string
	ReportDate                    string
	DailySamplesTested            string
	DailyUniqueIndividuals        string
	DailyPositiveIndividuals      string
	CumulativeSamplesTested       string
	CumulativeUniqueIndividuals   string
	CumulativePositiveIndividuals string
}

// TestingRecord is a per-facility per-day testing aggregate joined to its region.
type TestingRecord struct {
	FacilityName string
	ReportDate   time.Time
	Region       string // "Unknown" when the facility is not in the lookup table

	DailySamplesTested       int64
	DailyUniqueIndividuals   int64
	DailyPositiveIndividuals int64

	CumulativeSamplesTested       int64
	CumulativeUniqueIndividuals   int64
	CumulativePositiveIndividuals int64

	PctPositiveDaily float64 // 0 when no unique individuals were tested
}

// TestingColumn names a numeric column of the testing table
type TestingColumn string

const (
	ColDailySamplesTested            TestingColumn = "daily_output_samples_tested"
	ColDailyUniqueIndividuals        TestingColumn = "daily_output_unique_individuals"
	ColDailyPositiveIndividuals      TestingColumn = "daily_output_positive_individuals"
	ColCumulativeSamplesTested       TestingColumn = "cumulative_samples_tested"
	ColCumulativeUniqueIndividuals   TestingColumn = "cumulative_unique_individuals"
	ColCumulativePositiveIndividuals TestingColumn = "cumulative_positive_individuals"
	ColPctPositiveDaily              TestingColumn = "pct_positive_daily"
)

// Header columns of the testing table that are not numeric
const (
	ColFacilityName = "facility_name"
	ColReportDate   = "report_date"
	ColTestRegion   = "REGION"
)

// DailyTestingColumns are charted per day, CumulativeTestingColumns per week.
var (
	DailyTestingColumns = []TestingColumn{
		ColDailySamplesTested,
		ColDailyUniqueIndividuals,
		ColDailyPositiveIndividuals,
	}
	CumulativeTestingColumns = []TestingColumn{
		ColCumulativeSamplesTested,
		ColCumulativeUniqueIndividuals,
		ColCumulativePositiveIndividuals,
	}
)

// Value returns a numeric column as float64. Unknown columns return 0.
func (r TestingRecord) Value(col TestingColumn) float64 {
	switch col {
	case ColDailySamplesTested:
		return float64(r.DailySamplesTested)
	case ColDailyUniqueIndividuals:
		return float64(r.DailyUniqueIndividuals)
	case ColDailyPositiveIndividuals:
		return float64(r.DailyPositiveIndividuals)
	case ColCumulativeSamplesTested:
		return float64(r.CumulativeSamplesTested)
	case ColCumulativeUniqueIndividuals:
		return float64(r.CumulativeUniqueIndividuals)
	case ColCumulativePositiveIndividuals:
		return float64(r.CumulativePositiveIndividuals)
	case ColPctPositiveDaily:
		return r.PctPositiveDaily
	}
	return 0
}
