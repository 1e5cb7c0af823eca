package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		p      float64
		values []float64
		want   float64
	}{
		{"empty", 50, nil, 0},
		{"empty p90", 90, []float64{}, 0},
		{"single", 75, []float64{42}, 42},
		{"min at zero", 0, []float64{5, 1, 3}, 1},
		{"min below zero", -10, []float64{5, 1, 3}, 1},
		{"max at hundred", 100, []float64{5, 1, 3}, 5},
		{"max above hundred", 250, []float64{5, 1, 3}, 5},
		{"interpolated p25", 25, []float64{10, 20, 30, 40}, 17.5},
		{"exact rank", 50, []float64{3, 1, 2}, 2},
		{"even median", 50, []float64{4, 1, 3, 2}, 2.5},
		{"duplicates", 50, []float64{7, 7, 7, 7}, 7},
		{"p90 interpolated", 90, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.p, tt.values), 1e-9)
		})
	}
}

func TestPercentileNaN(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, 0.0, Percentile(math.NaN(), []float64{3}))
		assert.Equal(t, []float64{0, 2}, Percentiles([]float64{math.NaN(), 50}, []float64{1, 2, 3}))
	})
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Percentile(50, values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentiles(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	got := Percentiles([]float64{0, 25, 50, 100}, values)
	assert.InDeltaSlice(t, []float64{10, 17.5, 25, 40}, got, 1e-9)
	assert.Equal(t, []float64{0, 0}, Percentiles([]float64{10, 90}, nil))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
	assert.Equal(t, 2.0, Median([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Median(nil))
	for _, values := range [][]float64{{9, 1}, {5, 3, 8, 1, 0}, {1.5}} {
		assert.Equal(t, Percentile(50, values), Median(values))
	}
}

func TestNullableVariants(t *testing.T) {
	runs := []*float64{nil, ptr(1), nil, ptr(3)}
	assert.Equal(t, []float64{1, 3}, Compact(runs))
	assert.Equal(t, 2.0, MedianOf(runs))
	assert.Equal(t, Median([]float64{1, 3}), MedianOf(runs))
	assert.Equal(t, 3.0, PercentileOf(100, runs))
	assert.Equal(t, 0.0, MedianOf([]*float64{nil, nil}))
	assert.Equal(t, 0.0, PercentileOf(10, nil))
}

func TestStandardDeviation(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, StandardDeviation(values, true), 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StandardDeviation(values, false), 1e-9)
	assert.InDelta(t, 0.0, StandardDeviation([]float64{3, 3, 3}, false), 1e-9)
	assert.InDelta(t, 0.0, StandardDeviation([]float64{3}, true), 1e-9)
	assert.True(t, math.IsNaN(StandardDeviation(nil, true)), "empty input has no defined deviation")
}

func TestMedianAbsoluteDeviation(t *testing.T) {
	assert.Equal(t, 1.0, MedianAbsoluteDeviation([]float64{1, 1, 2, 2, 4, 6, 9}))
	assert.Equal(t, 0.0, MedianAbsoluteDeviation([]float64{5, 5, 5}))
	assert.Equal(t, 1.0, MedianAbsoluteDeviation([]float64{1, 2, 3, 4}))
}
