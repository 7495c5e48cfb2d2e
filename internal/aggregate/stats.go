package aggregate

import (
	"math"
	"sort"
)

// GenerationInterval is the assumed mean COVID-19 generation interval in days
const GenerationInterval = 5.0

// DoublingTime returns, for the last point of a cumulative series, how many
// steps ago the series was half its current value. The inverse of the series
// is linearly interpolated, and extrapolated past the first point when needed.
// ok is false when the series has fewer than two distinct values.
func DoublingTime(cumulative []float64) (float64, bool) {
	xs, ys := distinct(cumulative)
	if len(ys) < 2 {
		return 0, false
	}
	last := len(cumulative) - 1
	return float64(last) - inverse(xs, ys, cumulative[last]/2), true
}

// distinct keeps the first x of every run of equal y values. Cumulative
// series are non-decreasing, so the result is strictly increasing in y.
func distinct(y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(y))
	ys := make([]float64, 0, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		if n := len(ys); n > 0 && v <= ys[n-1] {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	return xs, ys
}

// inverse returns x such that the piecewise-linear curve through (xs, ys)
// reaches target. ys must be strictly increasing with at least two points.
func inverse(xs, ys []float64, target float64) float64 {
	i := sort.SearchFloat64s(ys, target)
	switch {
	case i == 0:
		i = 1
	case i >= len(ys):
		i = len(ys) - 1
	}
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return x0 + (target-y0)*(x1-x0)/(y1-y0)
}

// ReproductionNumber estimates R from a doubling time in days with a simple
// exponential growth model.
func ReproductionNumber(doublingTime float64) float64 {
	return math.Exp(math.Ln2 / doublingTime * GenerationInterval)
}

// MovingAverage returns the trailing mean over days points. The first
// days-1 values are NaN.
func MovingAverage(values []float64, days int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= days {
			sum -= values[i-days]
		}
		if i+1 < days {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(days)
	}
	return out
}

// Percentile returns the p-th percentile (0..100) with linear interpolation
// between closest ranks. values need not be sorted. Empty input yields NaN.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// Round rounds v to the given number of decimals
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
