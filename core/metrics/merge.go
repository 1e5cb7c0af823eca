package metrics

import (
	"fmt"

	"github.com/huangsam/wpperf/schema"
)

// MergeMetrics concatenates the runs of same-named metrics in argument order
// and recomputes the median over the combined runs.
func MergeMetrics(metrics ...schema.Metric) (schema.Metric, error) {
	if len(metrics) == 0 {
		return schema.Metric{}, ErrNoMetrics
	}
	name := metrics[0].Name
	total := 0
	for _, m := range metrics {
		if m.Name != name {
			return schema.Metric{}, fmt.Errorf("%w: cannot merge metric %s into metric %s", ErrMetricMismatch, m.Name, name)
		}
		total += len(m.Runs)
	}

	runs := make([]*float64, 0, total)
	for _, m := range metrics {
		for _, v := range m.Runs {
			if v == nil {
				runs = append(runs, nil)
				continue
			}
			runs = append(runs, schema.Float(*v))
		}
	}
	return newMetric(name, runs), nil
}

// MergeMetricSets pools several result sets metric by metric. Metrics are matched
// by name and returned in the order of the first set; every set must hold the
// same names.
func MergeMetricSets(sets ...[]schema.Metric) ([]schema.Metric, error) {
	if len(sets) == 0 {
		return []schema.Metric{}, nil
	}
	merged := make([]schema.Metric, 0, len(sets[0]))
	for _, head := range sets[0] {
		column := []schema.Metric{head}
		for s, set := range sets[1:] {
			m, ok := findMetric(set, head.Name)
			if !ok {
				return nil, fmt.Errorf("%w: metric %s missing from result set %d", ErrMetricMismatch, head.Name, s+2)
			}
			column = append(column, m)
		}
		m, err := MergeMetrics(column...)
		if err != nil {
			return nil, err
		}
		merged = append(merged, m)
	}
	for s, set := range sets[1:] {
		if len(set) != len(sets[0]) {
			return nil, fmt.Errorf("%w: result set %d has %d metrics, expected %d", ErrMetricMismatch, s+2, len(set), len(sets[0]))
		}
	}
	return merged, nil
}

func findMetric(set []schema.Metric, name string) (schema.Metric, bool) {
	for _, m := range set {
		if m.Name == name {
			return m, true
		}
	}
	return schema.Metric{}, false
}
