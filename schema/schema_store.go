package schema

import "time"

// ReportRecord represents a row from the wpperf_reports table.
type ReportRecord struct {
	ReportID      int64
	Command       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	TotalMetrics  int
	ConfigParams  *string
}

// MetricRunRecord represents a row from the wpperf_metric_runs table.
// Value is nil when the metric was unavailable for that run.
type MetricRunRecord struct {
	ReportID   int64
	Source     string
	MetricName string
	RunIndex   int
	Value      *float64
	Median     float64
}
