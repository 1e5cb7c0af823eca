package schema

import "time"

// ResponseRun is one successful benchmark request.
type ResponseRun struct {
	Index        int      `json:"index"`
	StatusCode   int      `json:"status_code"`
	Proto        string   `json:"proto"`
	TTFB         float64  `json:"ttfb_ms"`
	ResponseTime float64  `json:"response_time_ms"`
	Headers      []string `json:"headers"`
}

// Timing exposes the measured durations under their WebPageTest-style field names.
func (r ResponseRun) Timing(field string) (float64, bool) {
	switch field {
	case "TTFB":
		return r.TTFB, true
	case "responseTime":
		return r.ResponseTime, true
	default:
		return 0, false
	}
}

// ResponseHeaders returns the raw response header lines.
func (r ResponseRun) ResponseHeaders() ([]string, error) {
	return r.Headers, nil
}

// BenchmarkResult holds all responses collected for one URL.
type BenchmarkResult struct {
	SessionID   string        `json:"session_id"`
	URL         string        `json:"url"`
	Protocol    Protocol      `json:"protocol"`
	Requests    int           `json:"requests"`
	Concurrency int           `json:"concurrency"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Errors      []string      `json:"errors,omitempty"`
	Runs        []ResponseRun `json:"runs"`
	Duration    time.Duration `json:"duration"`
}
