package schema

// CheckResult holds the results of a threshold check.
type CheckResult struct {
	Passed     bool                `json:"passed" yaml:"passed"`
	Source     string              `json:"source" yaml:"source"`
	Thresholds map[string]float64  `json:"thresholds" yaml:"thresholds"`
	Metrics    []Metric            `json:"metrics" yaml:"metrics"`
	Failed     []CheckFailedMetric `json:"failed" yaml:"failed"`
}

// CheckFailedMetric represents a metric whose median exceeded its threshold.
type CheckFailedMetric struct {
	Name      string  `json:"name" yaml:"name"`
	Median    float64 `json:"median" yaml:"median"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}
