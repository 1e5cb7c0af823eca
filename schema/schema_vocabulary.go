package schema

// MetricDefinition documents one supported metric name.
type MetricDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Field       string `json:"field" yaml:"field"`
	Unit        string `json:"unit" yaml:"unit"`
	Description string `json:"description" yaml:"description"`
}
