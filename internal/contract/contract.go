// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/wpperf/schema"
)

// Run is one measured execution that metrics are extracted from.
// It is either a WebPageTest run or a single benchmark response.
type Run interface {
	// Timing returns a numeric timing field recorded for the run.
	Timing(field string) (float64, bool)

	// ResponseHeaders returns the raw "name: value" header lines of the main document response.
	ResponseHeaders() ([]string, error)
}

// ResultClient fetches raw WebPageTest result documents.
// This allows the fetch logic to be tested without a WebPageTest server.
type ResultClient interface {
	// GetResult returns the jsonResult document for a completed test.
	GetResult(ctx context.Context, testID string) ([]byte, error)

	// BaseURL identifies the WebPageTest instance, used for cache keys.
	BaseURL() string
}

// Benchmarker sends repeated requests to a URL and records every response.
type Benchmarker interface {
	Benchmark(ctx context.Context, url string) (schema.BenchmarkResult, error)
}

// CacheManager defines the interface for managing stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetHistoryStore() ReportStore
}

// CacheStore defines the interface for cached result storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ReportStore defines the interface for recording reports and their metric runs.
type ReportStore interface {
	// BeginReport creates a new report and returns its unique ID
	BeginReport(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndReport updates the report with completion data
	EndReport(reportID int64, endTime time.Time, totalMetrics int) error

	// RecordMetric stores every run value of a metric
	RecordMetric(reportID int64, source string, metric schema.Metric) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllReports returns every report ordered by ID
	GetAllReports() ([]schema.ReportRecord, error)

	// GetAllMetricRuns returns every recorded run value ordered by report, metric and run
	GetAllMetricRuns() ([]schema.MetricRunRecord, error)

	// Close closes the underlying connection
	Close() error
}
