package core

import (
	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/core/stats"
	"github.com/huangsam/wpperf/schema"
)

// summarizeMetrics enriches metrics with their unit, percentiles and spread.
func summarizeMetrics(ms []schema.Metric) []schema.MetricSummary {
	out := make([]schema.MetricSummary, len(ms))
	for i, m := range ms {
		out[i] = summarizeMetric(m)
	}
	return out
}

func summarizeMetric(m schema.Metric) schema.MetricSummary {
	values := m.Values()
	summary := schema.MetricSummary{
		Name:        m.Name,
		Unit:        metrics.UnitOf(m.Name),
		Median:      m.Median,
		Samples:     len(values),
		Percentiles: percentileValues(values),
		Runs:        m.Runs,
	}
	// Spread is meaningless for a single sample
	if len(values) >= 2 {
		sd := stats.StandardDeviation(values, false)
		mad := stats.MedianAbsoluteDeviation(values)
		summary.StdDev = &sd
		summary.MAD = &mad
	}
	return summary
}

func percentileValues(values []float64) []schema.PercentileValue {
	ps := stats.Percentiles(schema.DefaultPercentiles, values)
	out := make([]schema.PercentileValue, len(ps))
	for i, v := range ps {
		out[i] = schema.PercentileValue{Percentile: schema.DefaultPercentiles[i], Value: v}
	}
	return out
}

// newMetricReport builds one rendered block from pooled metrics.
func newMetricReport(source string, runs int, ms []schema.Metric) schema.MetricReport {
	return schema.MetricReport{
		Source:  source,
		Runs:    runs,
		Metrics: summarizeMetrics(ms),
	}
}
