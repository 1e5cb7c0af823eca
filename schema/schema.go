// Package schema has the models shared by every part of wpperf.
package schema

// Metric is a named measurement aggregated across runs.
//
// Runs holds one entry per run of the originating result set. A nil entry
// marks a run where the metric could not be computed, so positions stay
// aligned across metrics extracted from the same runs.
type Metric struct {
	Name   string     `json:"name" yaml:"name"`
	Median float64    `json:"median" yaml:"median"`
	Runs   []*float64 `json:"runs" yaml:"runs"`
}

// Values returns the non-nil run values in run order.
func (m Metric) Values() []float64 {
	values := make([]float64, 0, len(m.Runs))
	for _, v := range m.Runs {
		if v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// Float returns a pointer to a copy of v, for building run slices.
func Float(v float64) *float64 {
	return &v
}

// MetricSet is the metrics extracted for one source (a test set or a URL).
type MetricSet struct {
	Source  string   `json:"source" yaml:"source"`
	Runs    int      `json:"runs" yaml:"runs"`
	Metrics []Metric `json:"metrics" yaml:"metrics"`
}
