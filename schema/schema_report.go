package schema

import "time"

// PercentileValue is one percentile of a metric's run values.
type PercentileValue struct {
	Percentile float64 `json:"percentile" yaml:"percentile"`
	Value      float64 `json:"value" yaml:"value"`
}

// MetricSummary is a metric enriched with the statistics shown in reports.
// StdDev and MAD are nil when fewer than two runs have a value.
type MetricSummary struct {
	Name        string            `json:"name" yaml:"name"`
	Unit        string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	Median      float64           `json:"median" yaml:"median"`
	Samples     int               `json:"samples" yaml:"samples"`
	Percentiles []PercentileValue `json:"percentiles,omitempty" yaml:"percentiles,omitempty"`
	StdDev      *float64          `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`
	MAD         *float64          `json:"mad,omitempty" yaml:"mad,omitempty"`
	Runs        []*float64        `json:"runs" yaml:"runs"`
}

// BenchmarkInfo describes how a benchmark report was collected.
type BenchmarkInfo struct {
	SessionID   string        `json:"session_id" yaml:"session_id"`
	Protocol    Protocol      `json:"protocol" yaml:"protocol"`
	Requests    int           `json:"requests" yaml:"requests"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
	Succeeded   int           `json:"succeeded" yaml:"succeeded"`
	Failed      int           `json:"failed" yaml:"failed"`
	Errors      []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// MetricReport is one rendered block of metrics for a source.
// Source is the comma-joined test IDs or the benchmarked URL.
type MetricReport struct {
	Source    string          `json:"source" yaml:"source"`
	Runs      int             `json:"runs" yaml:"runs"`
	Metrics   []MetricSummary `json:"metrics" yaml:"metrics"`
	Benchmark *BenchmarkInfo  `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// PercentileSummary is the result of the percentiles command.
type PercentileSummary struct {
	Count       int               `json:"count" yaml:"count"`
	Missing     int               `json:"missing" yaml:"missing"`
	Median      float64           `json:"median" yaml:"median"`
	Percentiles []PercentileValue `json:"percentiles" yaml:"percentiles"`
	StdDev      *float64          `json:"std_dev" yaml:"std_dev"`
	MAD         *float64          `json:"mad" yaml:"mad"`
}
