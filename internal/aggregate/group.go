// Package aggregate groups enriched records into the series the charts draw.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/period"
)

// Func is a reduction over a group
type Func string

const (
	Count Func = "count"
	Sum   Func = "sum"
)

// Group is one aggregated group with its flattened keys
type Group struct {
	Keys  []string
	Value float64
}

// Key is a categorical group key
type Key[T any] func(T) string

// DateKey turns a date into a group key through a bucketer. Null dates produce
// "" and are dropped by GroupBy.
func DateKey[T any](date func(T) time.Time, b period.Bucketer) Key[T] {
	return func(r T) string {
		return period.Format(b.Bucket(date(r)))
	}
}

// GroupBy groups rows by keys and reduces each group with fn over value.
// value may be nil for Count. Groups whose key is "" for any key are dropped,
// and the result is sorted by keys.
func GroupBy[T any](rows []T, fn Func, value func(T) float64, keys ...Key[T]) []Group {
	index := make(map[string]int)
	var groups []Group

	parts := make([]string, len(keys))
rows:
	for _, r := range rows {
		for i, k := range keys {
			parts[i] = k(r)
			if parts[i] == "" {
				continue rows
			}
		}
		id := strings.Join(parts, "\x00")
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, Group{Keys: append([]string(nil), parts...)})
		}
		switch fn {
		case Sum:
			groups[gi].Value += value(r)
		default:
			groups[gi].Value++
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return lessKeys(groups[i].Keys, groups[j].Keys)
	})
	return groups
}

// GroupCount counts rows per group
func GroupCount[T any](rows []T, keys ...Key[T]) []Group {
	return GroupBy(rows, Count, nil, keys...)
}

// GroupSum sums value per group
func GroupSum[T any](rows []T, value func(T) float64, keys ...Key[T]) []Group {
	return GroupBy(rows, Sum, value, keys...)
}

// FilterTop keeps the rows of the n groups with the largest aggregate.
// Ties keep key order, so the result is deterministic. Row order is preserved.
func FilterTop[T any](rows []T, group Key[T], n int, fn Func, value func(T) float64) []T {
	groups := GroupBy(rows, fn, value, group)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value > groups[j].Value
	})
	if n < len(groups) {
		groups = groups[:n]
	}

	keep := make(map[string]bool, len(groups))
	for _, g := range groups {
		keep[g.Keys[0]] = true
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep[group(r)] {
			out = append(out, r)
		}
	}
	return out
}

func lessKeys(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
