package derive

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/internal/pipeline"
)

// Facilities maps a testing facility name to its region
type Facilities map[string]string

// Region returns the facility's region or "Unknown".
func (f Facilities) Region(facility string) string {
	if region, ok := f[facility]; ok && region != "" {
		return region
	}
	return contracts.Unknown
}

// Testing derives testing records, dropping rows with a null report date or
// one before start. Earlier rows are upload artifacts, some dated in the 1900s.
func Testing(rows []contracts.RawTesting, facilities Facilities, start time.Time, workers int) []contracts.TestingRecord {
	derived := pipeline.ApplyParallel(rows, pipeline.Map(func(r contracts.RawTesting) contracts.TestingRecord {
		return TestingRow(r, facilities)
	}), workers)

	kept, _ := period.FilterDateRange(derived, func(r contracts.TestingRecord) time.Time {
		return r.ReportDate
	}, period.Range{Start: start})
	return kept
}

// TestingRow derives one testing record. Malformed counts become 0.
func TestingRow(raw contracts.RawTesting, facilities Facilities) contracts.TestingRecord {
	rec := contracts.TestingRecord{
		FacilityName:                  raw.FacilityName,
		ReportDate:                    parse(raw.ReportDate),
		Region:                        facilities.Region(raw.FacilityName),
		DailySamplesTested:            count(raw.DailySamplesTested),
		DailyUniqueIndividuals:        count(raw.DailyUniqueIndividuals),
		DailyPositiveIndividuals:      count(raw.DailyPositiveIndividuals),
		CumulativeSamplesTested:       count(raw.CumulativeSamplesTested),
		CumulativeUniqueIndividuals:   count(raw.CumulativeUniqueIndividuals),
		CumulativePositiveIndividuals: count(raw.CumulativePositiveIndividuals),
	}
	rec.PctPositiveDaily = Positivity(rec.DailyPositiveIndividuals, rec.DailyUniqueIndividuals)
	return rec
}

// Positivity is positive/tested, or 0 when nobody was tested.
func Positivity(positive, tested int64) float64 {
	if tested == 0 {
		return 0
	}
	return float64(positive) / float64(tested)
}

func count(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}
