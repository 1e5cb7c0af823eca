package metrics

import "errors"

// Configuration errors abort the command before any run is evaluated.
var (
	ErrUnsupportedMetric = errors.New("unsupported metric")
	ErrMetricMismatch    = errors.New("metric mismatch")
	ErrNoMetrics         = errors.New("no metrics to merge")
)

// Data errors raised while evaluating runs.
var (
	// ErrServerTimingMissing means a requested Server-Timing metric is absent from a run.
	// It is the only per-run failure that stops extraction.
	ErrServerTimingMissing = errors.New("server-timing metric not present")

	// ErrInconsistentRuns means runs of one result set expose different Server-Timing metrics.
	ErrInconsistentRuns = errors.New("metric not present in every run")

	// ErrMetricUnavailable means the run carries no value for the metric. The run is recorded as nil.
	ErrMetricUnavailable = errors.New("metric unavailable")
)

// IsFatal reports whether err must abort extraction instead of leaving a nil run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrServerTimingMissing) ||
		errors.Is(err, ErrInconsistentRuns) ||
		errors.Is(err, ErrUnsupportedMetric) ||
		errors.Is(err, ErrMetricMismatch)
}
