package period

import (
	"fmt"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
)

// Range is a closed date interval. A zero bound is open.
type Range struct {
	Start time.Time
	End   time.Time
}

// Indexed is a row keyed by its own date ordinal, for tables without a date column.
type Indexed[T any] struct {
	Index time.Time
	Row   T
}

// IndexOf is the key function of Indexed rows
func IndexOf[T any](r Indexed[T]) time.Time {
	return r.Index
}

// FilterDateRange returns the rows whose date falls within r, bounds inclusive.
// Null dates never match. At least one bound is required.
func FilterDateRange[T any](rows []T, date func(T) time.Time, r Range) ([]T, error) {
	if r.Start.IsZero() && r.End.IsZero() {
		return nil, fmt.Errorf("filter date range: start or end is required: %w", contracts.ErrInvalidArgument)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		d := date(row)
		if d.IsZero() {
			continue
		}
		if !r.Start.IsZero() && d.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && d.After(r.End) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// FilterDateRangeIndexed is FilterDateRange keyed by the row index
func FilterDateRangeIndexed[T any](rows []Indexed[T], r Range) ([]Indexed[T], error) {
	return FilterDateRange(rows, IndexOf[T], r)
}

// Cutoff returns max(date) - days over the rows, and false when no row has a date.
func Cutoff[T any](rows []T, date func(T) time.Time, days int) (time.Time, bool) {
	max, ok := MaxDate(rows, date)
	if !ok {
		return time.Time{}, false
	}
	return AddDays(max, -days), true
}

// FilterLatest splits rows at cutoff = max(date) - days, max taken from the
// rows themselves. returnLatest selects date > cutoff; otherwise the complement
// (date <= cutoff, plus rows with a null date) is returned, so the two calls
// always partition the input.
func FilterLatest[T any](rows []T, date func(T) time.Time, days int, returnLatest bool) []T {
	cutoff, ok := Cutoff(rows, date, days)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		d := date(row)
		latest := ok && !d.IsZero() && d.After(cutoff)
		if latest == returnLatest {
			out = append(out, row)
		}
	}
	return out
}

// FilterLatestIndexed is FilterLatest keyed by the row index
func FilterLatestIndexed[T any](rows []Indexed[T], days int, returnLatest bool) []Indexed[T] {
	return FilterLatest(rows, IndexOf[T], days, returnLatest)
}

// FilterDayOfWeek returns the rows whose date falls on weekday (0 = Monday).
func FilterDayOfWeek[T any](rows []T, date func(T) time.Time, weekday int) []T {
	out := make([]T, 0, len(rows)/7+1)
	for _, row := range rows {
		d := date(row)
		if !d.IsZero() && Weekday(d) == weekday {
			out = append(out, row)
		}
	}
	return out
}
