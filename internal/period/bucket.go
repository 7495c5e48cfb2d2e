package period

import (
	"fmt"
	"time"
)

// Frequency of time buckets
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// Bucketer maps dates to time buckets. Weekly buckets are labeled by their
// last day, which falls on WeekEnd (0 = Monday).
type Bucketer struct {
	Freq    Frequency
	WeekEnd int
}

// WeeklyEndingSunday is the default bucketer
var WeeklyEndingSunday = Bucketer{Freq: Weekly, WeekEnd: Sunday}

// Bucket returns the label of the bucket holding t. Null stays null.
func (b Bucketer) Bucket(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = Day(t)
	if b.Freq != Weekly {
		return t
	}
	ahead := (b.WeekEnd - Weekday(t) + 7) % 7
	return AddDays(t, ahead)
}

// Step is the distance between consecutive bucket labels in days.
func (b Bucketer) Step() int {
	if b.Freq == Weekly {
		return 7
	}
	return 1
}

// Range returns every bucket label from the bucket of min to the bucket of max, inclusive.
func (b Bucketer) Range(min, max time.Time) []time.Time {
	if min.IsZero() || max.IsZero() || max.Before(min) {
		return nil
	}
	first, last := b.Bucket(min), b.Bucket(max)
	out := make([]time.Time, 0, DaysBetween(first, last)/b.Step()+1)
	for d := first; !d.After(last); d = AddDays(d, b.Step()) {
		out = append(out, d)
	}
	return out
}

// Aligned reports whether every bucket label falls on weekday, so that
// sampling a bucketed series on weekday keeps one point per week.
func (b Bucketer) Aligned(weekday int) bool {
	return b.Freq != Weekly || b.WeekEnd == weekday
}

func (b Bucketer) String() string {
	if b.Freq == Weekly {
		return fmt.Sprintf("weekly(end=%d)", b.WeekEnd)
	}
	return string(b.Freq)
}
