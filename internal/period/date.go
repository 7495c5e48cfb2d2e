// Package period holds the date utilities of the pipeline: tolerant parsing,
// range and trailing-window filters, weekday sampling and time buckets.
//
// All dates are calendar days at UTC midnight. The zero time.Time is null.
package period

import (
	"strings"
	"time"
)

// Weekday numbering used across the tracker: 0 = Monday ... 6 = Sunday
const (
	Monday   = 0
	Sunday   = 6
	Saturday = 5
)

var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
}

// ParseDate parses s with the accepted layouts and truncates it to the day.
// Malformed or empty input yields (zero, false); it is never an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// MustDate parses a YYYY-MM-DD literal and panics on error. For tests and constants.
func MustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the weekday of t, 0 = Monday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DaysBetween returns the whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Format renders a date as YYYY-MM-DD, or "" for null.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// MaxDate returns the latest non-null date produced by key.
func MaxDate[T any](rows []T, key func(T) time.Time) (time.Time, bool) {
	var max time.Time
	found := false
	for _, r := range rows {
		d := key(r)
		if d.IsZero() {
			continue
		}
		if !found || d.After(max) {
			max = d
			found = true
		}
	}
	return max, found
}

// MinDate returns the earliest non-null date produced by key.
func MinDate[T any](rows []T, key func(T) time.Time) (time.Time, bool) {
	var min time.Time
	found := false
	for _, r := range rows {
		d := key(r)
		if d.IsZero() {
			continue
		}
		if !found || d.Before(min) {
			min = d
			found = true
		}
	}
	return min, found
}
