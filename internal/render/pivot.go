package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/covid19trackerph/tracker/internal/contracts"
)

// Pivot spreads a long table into one column per color value:
// x, <series 1>, <series 2>, ... X values keep their order of first appearance.
// Without a color column the result is x, y. Missing cells are empty.
//
// opts.CategoryOrder orders the series and opts.XOrder the x values.
// opts.SortByTotal then orders x values by their row total, ascending.
func Pivot(t *Table, x, y, color string, opts Options) (*Table, error) {
	xi, yi := t.Column(x), t.Column(y)
	if xi < 0 || yi < 0 {
		return nil, fmt.Errorf("pivot on %q/%q: %w", x, y, contracts.ErrInvalidArgument)
	}

	ci := -1
	if color != "" {
		if ci = t.Column(color); ci < 0 {
			return nil, fmt.Errorf("pivot color %q: %w", color, contracts.ErrInvalidArgument)
		}
	}

	var xs []string
	xIndex := make(map[string]int)
	var series []string
	sIndex := make(map[string]int)
	cells := make(map[[2]int]string)

	for _, row := range t.Rows {
		xv := row[xi]
		if _, ok := xIndex[xv]; !ok {
			xIndex[xv] = len(xs)
			xs = append(xs, xv)
		}
		sv := y
		if ci >= 0 {
			sv = row[ci]
		}
		if _, ok := sIndex[sv]; !ok {
			sIndex[sv] = len(series)
			series = append(series, sv)
		}
		cells[[2]int{xIndex[xv], sIndex[sv]}] = row[yi]
	}

	ordered := orderCategories(series, opts.CategoryOrder)
	xs = orderCategories(xs, opts.XOrder)
	if opts.SortByTotal {
		xs = sortByTotal(xs, func(xv string) float64 {
			total := 0.0
			for _, s := range series {
				v, _ := strconv.ParseFloat(cells[[2]int{xIndex[xv], sIndex[s]}], 64)
				total += v
			}
			return total
		})
	}

	out := NewTable(append([]string{x}, ordered...)...)
	for _, xv := range xs {
		row := make([]string, 0, len(ordered)+1)
		row = append(row, xv)
		for _, s := range ordered {
			row = append(row, cells[[2]int{xIndex[xv], sIndex[s]}])
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// orderCategories puts the listed categories first, in the given order, then
// the rest in their original order. Listed categories that never occur are skipped.
func orderCategories(seen, order []string) []string {
	present := make(map[string]bool, len(seen))
	for _, s := range seen {
		present[s] = true
	}

	out := make([]string, 0, len(seen))
	placed := make(map[string]bool, len(seen))
	for _, s := range order {
		if present[s] && !placed[s] {
			out = append(out, s)
			placed[s] = true
		}
	}
	for _, s := range seen {
		if !placed[s] {
			out = append(out, s)
		}
	}
	return out
}

func sortByTotal(categories []string, total func(string) float64) []string {
	totals := make(map[string]float64, len(categories))
	for _, c := range categories {
		totals[c] = total(c)
	}
	sorted := append([]string(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return totals[sorted[i]] < totals[sorted[j]]
	})
	return sorted
}

// Spread lays out the values of column x as one column per color value, for
// histograms: n, <series 1>, <series 2>, ... Row k holds the k-th value of each
// series. Shorter series are padded with empty cells. Empty values are skipped.
func Spread(t *Table, x, color string, opts Options) (*Table, error) {
	xi := t.Column(x)
	if xi < 0 {
		return nil, fmt.Errorf("spread %q: %w", x, contracts.ErrInvalidArgument)
	}
	ci := -1
	if color != "" {
		if ci = t.Column(color); ci < 0 {
			return nil, fmt.Errorf("spread color %q: %w", color, contracts.ErrInvalidArgument)
		}
	}

	var series []string
	values := make(map[string][]string)
	longest := 0
	for _, row := range t.Rows {
		if row[xi] == "" {
			continue
		}
		s := x
		if ci >= 0 {
			s = row[ci]
		}
		if _, ok := values[s]; !ok {
			series = append(series, s)
		}
		values[s] = append(values[s], row[xi])
		if n := len(values[s]); n > longest {
			longest = n
		}
	}
	series = orderCategories(series, opts.CategoryOrder)

	out := NewTable(append([]string{"n"}, series...)...)
	for k := 0; k < longest; k++ {
		row := make([]string, 0, len(series)+1)
		row = append(row, strconv.Itoa(k))
		for _, s := range series {
			v := ""
			if k < len(values[s]) {
				v = values[s][k]
			}
			row = append(row, v)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
