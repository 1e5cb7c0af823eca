// Package metrics turns result runs into named metric series.
package metrics

import (
	"fmt"

	"github.com/huangsam/wpperf/core/stats"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// ExtractMetrics evaluates each expression over every run. The result keeps the
// requested order and every metric has exactly len(runs) entries; a run that
// cannot produce a value is stored as nil.
func ExtractMetrics(runs []contract.Run, expressions []string) ([]schema.Metric, error) {
	resolved := make([]*Expression, 0, len(expressions))
	for _, expr := range expressions {
		e, err := ResolveExpression(expr)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, e)
	}

	metrics := make([]schema.Metric, 0, len(resolved))
	for _, e := range resolved {
		values := make([]*float64, len(runs))
		for i, run := range runs {
			v, err := e.Evaluate(run)
			if err != nil {
				if IsFatal(err) {
					return nil, fmt.Errorf("%s, run %d: %w", e.Name, i+1, err)
				}
				continue
			}
			values[i] = schema.Float(v)
		}
		metrics = append(metrics, newMetric(e.Name, values))
	}
	return metrics, nil
}

// ExtractServerTimingMetrics returns every Server-Timing metric of the first run,
// in header order. Every other run must report the same metrics.
func ExtractServerTimingMetrics(runs []contract.Run) ([]schema.Metric, error) {
	if len(runs) == 0 {
		return []schema.Metric{}, nil
	}

	first, err := serverTimingEntries(runs[0])
	if err != nil {
		return nil, fmt.Errorf("%w: run 1: %w", ErrInconsistentRuns, err)
	}
	var names []string
	seen := make(map[string]bool)
	for _, entry := range first {
		if entry.HasDuration && !seen[entry.Name] {
			seen[entry.Name] = true
			names = append(names, entry.Name)
		}
	}

	metrics := make([]schema.Metric, len(names))
	for j, name := range names {
		metrics[j] = schema.Metric{Name: ServerTimingPrefix + name, Runs: make([]*float64, len(runs))}
	}
	for i, run := range runs {
		entries := first
		if i > 0 {
			if entries, err = serverTimingEntries(run); err != nil {
				return nil, fmt.Errorf("%w: run %d: %w", ErrInconsistentRuns, i+1, err)
			}
		}
		durations := serverTimingDurations(entries)
		for j, name := range names {
			d, ok := durations[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s missing from run %d", ErrInconsistentRuns, metrics[j].Name, i+1)
			}
			metrics[j].Runs[i] = schema.Float(d)
		}
	}
	for j := range metrics {
		metrics[j].Median = stats.MedianOf(metrics[j].Runs)
	}
	return metrics, nil
}

func newMetric(name string, runs []*float64) schema.Metric {
	return schema.Metric{Name: name, Median: stats.MedianOf(runs), Runs: runs}
}
