// Package stats computes order statistics and dispersion over run samples.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th percentile of values using linear interpolation
// between the two closest ranks, with rank = (p/100) * (n-1).
//
// p <= 0 yields the minimum and p >= 100 the maximum. An empty input or a NaN p yields 0.
// The input slice is not modified.
func Percentile(p float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileFromSorted(p, sorted)
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(ps []float64, values []float64) []float64 {
	out := make([]float64, len(ps))
	if len(values) == 0 {
		return out
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i, p := range ps {
		out[i] = percentileFromSorted(p, sorted)
	}
	return out
}

// percentileFromSorted expects a non-empty ascending slice.
func percentileFromSorted(p float64, sorted []float64) float64 {
	n := len(sorted)
	switch {
	case math.IsNaN(p):
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}

	idx := p / 100 * float64(n-1)
	lower := int(math.Floor(idx))
	frac := idx - float64(lower)
	if frac == 0 || lower+1 >= n {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*frac
}

// Median is the 50th percentile.
func Median(values []float64) float64 {
	return Percentile(50, values)
}

// Compact drops nil entries, keeping order.
func Compact(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// PercentileOf is Percentile over a run slice where nil marks a missing run.
func PercentileOf(p float64, values []*float64) float64 {
	return Percentile(p, Compact(values))
}

// MedianOf is Median over a run slice where nil marks a missing run.
func MedianOf(values []*float64) float64 {
	return PercentileOf(50, values)
}

// StandardDeviation returns the root mean squared deviation from the mean.
// The divisor is n when population is true and n-1 otherwise.
//
// Unlike Percentile there is no empty fallback: callers must pass at least one
// value (two for the sample form), otherwise the result is NaN.
func StandardDeviation(values []float64, population bool) float64 {
	if population {
		_, std := stat.PopMeanStdDev(values, nil)
		return std
	}
	_, std := stat.MeanStdDev(values, nil)
	return std
}

// MedianAbsoluteDeviation returns the median of |x - median(values)|.
func MedianAbsoluteDeviation(values []float64) float64 {
	m := Median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	return Median(deviations)
}
