package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
)

var d = period.MustDate

type row struct {
	Cat  string
	Date time.Time
	N    float64
}

func cat(r row) string { return r.Cat }
func date(r row) time.Time { return r.Date }
func value(r row) float64 { return r.N }

func TestGroupCountAndSum(t *testing.T) {
	rows := []row{
		{"B", d("2021-10-04"), 2},
		{"A", d("2021-10-04"), 1},
		{"B", d("2021-10-05"), 3},
		{"", d("2021-10-05"), 9},
	}

	counts := GroupCount(rows, cat)
	assert.Equal(t, []Group{{Keys: []string{"A"}, Value: 1}, {Keys: []string{"B"}, Value: 2}}, counts)

	sums := GroupSum(rows, value, cat, DateKey(date, period.Bucketer{Freq: period.Daily}))
	assert.Equal(t, []Group{
		{Keys: []string{"A", "2021-10-04"}, Value: 1},
		{Keys: []string{"B", "2021-10-04"}, Value: 2},
		{Keys: []string{"B", "2021-10-05"}, Value: 3},
	}, sums)

	weekly := GroupCount(rows, DateKey(date, period.WeeklyEndingSunday))
	assert.Equal(t, []Group{{Keys: []string{"2021-10-10"}, Value: 4}}, weekly)
}

func TestFilterTop(t *testing.T) {
	rows := []row{{Cat: "D"}, {Cat: "C"}, {Cat: "A"}, {Cat: "B"}, {Cat: "A"}, {Cat: "C"}, {Cat: "B"}, {Cat: "A"}}

	top := FilterTop(rows, cat, 2, Count, nil)

	var cats []string
	for _, r := range top {
		cats = append(cats, r.Cat)
	}
	assert.Equal(t, []string{"A", "B", "A", "B", "A"}, cats, "B wins the tie with C by key order, row order is kept")

	assert.Len(t, FilterTop(rows, cat, 10, Count, nil), len(rows))

	bySum := FilterTop([]row{{"X", time.Time{}, 1}, {"Y", time.Time{}, 5}, {"X", time.Time{}, 1}}, cat, 1, Sum, value)
	require.Len(t, bySum, 1)
	assert.Equal(t, "Y", bySum[0].Cat)
}

func TestCountCumsumByDate(t *testing.T) {
	rows := []row{
		{Cat: "A", Date: d("2021-10-04")},
		{Cat: "A", Date: d("2021-10-06")},
		{Cat: "A", Date: d("2021-10-20")},
		{Cat: "B", Date: d("2021-10-12")},
		{Cat: "B"},
	}

	got := CountCumsumByDate(rows, cat, date, period.WeeklyEndingSunday)

	want := []Point{
		{"A", d("2021-10-10"), 2, 2},
		{"A", d("2021-10-17"), 0, 2},
		{"A", d("2021-10-24"), 1, 3},
		{"B", d("2021-10-10"), 0, 0},
		{"B", d("2021-10-17"), 1, 1},
		{"B", d("2021-10-24"), 0, 1},
	}
	assert.Equal(t, want, got)
}

func TestCountCumsumByDateProperties(t *testing.T) {
	start := d("2020-03-01")
	var rows []row
	for i := 0; i < 120; i++ {
		if i%7 == 3 || i%11 == 0 {
			continue
		}
		rows = append(rows, row{Cat: []string{"NCR", "CAR", "BARMM"}[i%3], Date: period.AddDays(start, i*i%97)})
	}

	for _, b := range []period.Bucketer{period.WeeklyEndingSunday, {Freq: period.Daily}} {
		points := CountCumsumByDate(rows, cat, date, b)

		min, _ := period.MinDate(rows, date)
		max, _ := period.MaxDate(rows, date)
		buckets := b.Range(min, max)
		require.Len(t, points, 3*len(buckets), b.String())

		seen := map[string]map[time.Time]int{}
		total := 0
		for i, p := range points {
			if seen[p.Category] == nil {
				seen[p.Category] = map[time.Time]int{}
			}
			seen[p.Category][p.Bucket]++
			total += p.Count
			if i > 0 && points[i-1].Category == p.Category {
				assert.GreaterOrEqual(t, p.Cumulative, points[i-1].Cumulative)
				assert.True(t, p.Bucket.After(points[i-1].Bucket))
			}
		}
		for _, c := range []string{"NCR", "CAR", "BARMM"} {
			for _, bucket := range buckets {
				assert.Equal(t, 1, seen[c][bucket], "%s %s", c, period.Format(bucket))
			}
		}
		assert.Equal(t, len(rows), total)
	}

	assert.Nil(t, CountCumsumByDate([]row{{Cat: "A"}}, cat, date, period.WeeklyEndingSunday))
}

func caseRecord(region, onset string, status contracts.CaseStatus, closed string) contracts.CaseRecord {
	r := contracts.CaseRecord{Region: region, CaseStatus: status}
	r.DateOnset, _ = period.ParseDate(onset)
	r.DateClosed, _ = period.ParseDate(closed)
	return r
}

func TestActiveCases(t *testing.T) {
	records := []contracts.CaseRecord{
		caseRecord("NCR", "2021-10-04", contracts.StatusActive, ""),
		caseRecord("NCR", "2021-10-05", contracts.StatusClosed, "2021-10-13"),
		caseRecord("CAR", "2021-10-12", contracts.StatusActive, ""),
		caseRecord("BARMM", "2021-10-04", contracts.StatusClosed, "2021-10-25"),
	}

	got, err := ActiveCases(records, period.WeeklyEndingSunday, period.Sunday)
	require.NoError(t, err)

	type key struct {
		region string
		date   string
	}
	active := map[key]int{}
	for _, p := range got {
		active[key{p.Region, period.Format(p.Date)}] = p.Active
		assert.Equal(t, p.Confirmed-p.Closed, p.Active)
	}

	assert.Len(t, got, 12)
	assert.Equal(t, map[key]int{
		{"BARMM", "2021-10-10"}: 1, {"BARMM", "2021-10-17"}: 1, {"BARMM", "2021-10-24"}: 1, {"BARMM", "2021-10-31"}: 0,
		{"CAR", "2021-10-10"}: 0, {"CAR", "2021-10-17"}: 1, {"CAR", "2021-10-24"}: 1, {"CAR", "2021-10-31"}: 1,
		{"NCR", "2021-10-10"}: 2, {"NCR", "2021-10-17"}: 1, {"NCR", "2021-10-24"}: 1, {"NCR", "2021-10-31"}: 1,
	}, active, "a region with no closed cases is kept")
}

func TestActiveCasesRejectsMisalignedSampling(t *testing.T) {
	_, err := ActiveCases(nil, period.WeeklyEndingSunday, period.Monday)
	assert.ErrorIs(t, err, contracts.ErrBucketMismatch)

	_, err = ActiveCases(nil, period.Bucketer{Freq: period.Daily}, period.Monday)
	assert.NoError(t, err)
}

func TestDoublingTime(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"exponential", []float64{1, 2, 4, 8, 16}, 1},
		{"linear", []float64{10, 20, 30, 40}, 2},
		{"extrapolated", []float64{4, 5}, 2.5},
		{"flat start", []float64{10, 10, 20}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DoublingTime(tt.series)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := DoublingTime([]float64{5, 5, 5})
	assert.False(t, ok)
	_, ok = DoublingTime(nil)
	assert.False(t, ok)
}

func TestReproductionNumber(t *testing.T) {
	assert.InDelta(t, 2.0, ReproductionNumber(5), 1e-9)
	assert.InDelta(t, math.Pow(2, 0.5), ReproductionNumber(10), 1e-9)
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, got[1:])
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 3.0, Percentile(values, 50))
	assert.InDelta(t, 4.6, Percentile(values, 90), 1e-9)
	assert.Equal(t, 1.0, Percentile(values, 0))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values, "input is not reordered")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.3456, 2))
}
