package aggregate

import (
	"sort"
	"time"

	"github.com/covid19trackerph/tracker/internal/period"
)

// Point is one (category, bucket) cell of a gap-filled cumulative series
type Point struct {
	Category   string
	Bucket     time.Time
	Count      int
	Cumulative int
}

// CountCumsumByDate counts rows per (category, bucket), fills every bucket
// from the bucket of the earliest date to the bucket of the latest date with
// zeros for every observed category, and adds the running total per category.
// Rows with a null date or an empty category are skipped.
// Output is ordered by category, then bucket.
func CountCumsumByDate[T any](rows []T, category Key[T], date func(T) time.Time, b period.Bucketer) []Point {
	min, ok := period.MinDate(rows, date)
	if !ok {
		return nil
	}
	max, _ := period.MaxDate(rows, date)
	buckets := b.Range(min, max)

	counts := make(map[string]map[time.Time]int)
	for _, r := range rows {
		d := date(r)
		c := category(r)
		if d.IsZero() || c == "" {
			continue
		}
		if counts[c] == nil {
			counts[c] = make(map[time.Time]int)
		}
		counts[c][b.Bucket(d)]++
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]Point, 0, len(categories)*len(buckets))
	for _, c := range categories {
		running := 0
		for _, bucket := range buckets {
			n := counts[c][bucket]
			running += n
			out = append(out, Point{Category: c, Bucket: bucket, Count: n, Cumulative: running})
		}
	}
	return out
}

// SampleWeekday keeps the points whose bucket falls on weekday (0 = Monday).
func SampleWeekday(points []Point, weekday int) []Point {
	return period.FilterDayOfWeek(points, func(p Point) time.Time { return p.Bucket }, weekday)
}
