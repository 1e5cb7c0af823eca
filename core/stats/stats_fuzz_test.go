package stats

import (
	"math"
	"testing"
)

// FuzzPercentile checks the bounds and ordering guarantees of Percentile.
func FuzzPercentile(f *testing.F) {
	f.Add(50.0, 1.0, 2.0, 3.0, 4.0)
	f.Add(0.0, -5.0, 5.0, 0.0, 0.0)
	f.Add(100.0, 1e9, -1e9, 3.5, 3.5)
	f.Add(33.3, 7.0, 7.0, 7.0, 7.0)

	f.Fuzz(func(t *testing.T, p, a, b, c, d float64) {
		values := []float64{a, b, c, d}
		for _, v := range append(values, p) {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e12 {
				return
			}
		}

		got := Percentile(p, values)
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		tol := 1e-9*math.Max(math.Abs(lo), math.Abs(hi)) + 1e-9
		if got < lo-tol || got > hi+tol {
			t.Fatalf("Percentile(%v, %v) = %v outside [%v, %v]", p, values, got, lo, hi)
		}
		if p <= 0 && got != lo {
			t.Fatalf("Percentile(%v) = %v, want min %v", p, got, lo)
		}
		if p >= 100 && got != hi {
			t.Fatalf("Percentile(%v) = %v, want max %v", p, got, hi)
		}
		if p >= 0 && p <= 90 && Percentile(p, values) > Percentile(p+10, values)+tol {
			t.Fatalf("Percentile is not monotonic at p=%v for %v", p, values)
		}
	})
}
