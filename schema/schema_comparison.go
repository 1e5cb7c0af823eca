package schema

// MetricDelta is the change of one metric median between two result sets.
type MetricDelta struct {
	Name         string    `json:"name" yaml:"name"`
	BaseMedian   float64   `json:"base_median" yaml:"base_median"`
	TargetMedian float64   `json:"target_median" yaml:"target_median"`
	Delta        float64   `json:"delta" yaml:"delta"`
	DeltaPercent *float64  `json:"delta_percent" yaml:"delta_percent"`
	Direction    Direction `json:"direction" yaml:"direction"`
	BaseRuns     int       `json:"base_runs" yaml:"base_runs"`
	TargetRuns   int       `json:"target_runs" yaml:"target_runs"`
}

// ComparisonResult holds the deltas for every requested metric.
type ComparisonResult struct {
	Base    string        `json:"base" yaml:"base"`
	Target  string        `json:"target" yaml:"target"`
	Results []MetricDelta `json:"results" yaml:"results"`
}
