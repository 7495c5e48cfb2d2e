package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
)

// ActivePoint is the active case count of one region at one sample date
type ActivePoint struct {
	Region    string
	Date      time.Time
	Confirmed int // cumulative by onset
	Closed    int // cumulative by closed date
	Active    int
}

// ActiveCases reconciles the confirmed series (every record by onset date)
// with the closed series (CLOSED records by closed date). Both series use the
// same bucketer and are sampled on the same weekday, then joined on
// (date, region) over the union of both axes with each cumulative value
// carried forward, so a region or date missing from one side is never dropped.
// A weekly bucketer whose week end differs from weekday is rejected.
func ActiveCases(records []contracts.CaseRecord, b period.Bucketer, weekday int) ([]ActivePoint, error) {
	if !b.Aligned(weekday) {
		return nil, fmt.Errorf("active cases: %s sampled on weekday %d: %w", b, weekday, contracts.ErrBucketMismatch)
	}

	region := func(r contracts.CaseRecord) string { return r.Region }
	onset := func(r contracts.CaseRecord) time.Time { return r.DateOnset }
	closedOn := func(r contracts.CaseRecord) time.Time { return r.DateClosed }

	closedRecords := make([]contracts.CaseRecord, 0, len(records))
	for _, r := range records {
		if r.CaseStatus == contracts.StatusClosed {
			closedRecords = append(closedRecords, r)
		}
	}

	confirmed := SampleWeekday(CountCumsumByDate(records, region, onset, b), weekday)
	closed := SampleWeekday(CountCumsumByDate(closedRecords, region, closedOn, b), weekday)

	return joinCumulative(confirmed, closed), nil
}

type series map[string]map[time.Time]int

func index(points []Point) (series, map[time.Time]bool) {
	s := make(series)
	dates := make(map[time.Time]bool)
	for _, p := range points {
		if s[p.Category] == nil {
			s[p.Category] = make(map[time.Time]int)
		}
		s[p.Category][p.Bucket] = p.Cumulative
		dates[p.Bucket] = true
	}
	return s, dates
}

func joinCumulative(confirmed, closed []Point) []ActivePoint {
	conf, confDates := index(confirmed)
	clos, closDates := index(closed)

	regionSet := make(map[string]bool)
	for r := range conf {
		regionSet[r] = true
	}
	for r := range clos {
		regionSet[r] = true
	}
	regions := make([]string, 0, len(regionSet))
	for r := range regionSet {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	dateSet := confDates
	for d := range closDates {
		dateSet[d] = true
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]ActivePoint, 0, len(regions)*len(dates))
	for _, r := range regions {
		c, k := 0, 0
		for _, d := range dates {
			if v, ok := conf[r][d]; ok {
				c = v
			}
			if v, ok := clos[r][d]; ok {
				k = v
			}
			out = append(out, ActivePoint{Region: r, Date: d, Confirmed: c, Closed: k, Active: c - k})
		}
	}
	return out
}
