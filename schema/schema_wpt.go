package schema

import (
	"encoding/json"
	"fmt"
)

// WPTResult is the envelope returned by the WebPageTest jsonResult endpoint.
type WPTResult struct {
	StatusCode int     `json:"statusCode"`
	StatusText string  `json:"statusText"`
	Data       WPTData `json:"data"`
}

// WPTData holds the test metadata and its runs keyed by run number.
type WPTData struct {
	ID           string                `json:"id"`
	URL          string                `json:"url"`
	Location     string                `json:"location"`
	Connectivity string                `json:"connectivity"`
	Runs         map[string]WPTRunData `json:"runs"`
}

// WPTRunData is one run as it appears in the result document.
type WPTRunData struct {
	FirstView *WPTView     `json:"firstView"`
	Requests  []WPTRequest `json:"requests"`
}

// WPTView holds the numeric timing fields of a page view and its requests.
// Field names are kept verbatim, e.g. "chromeUserTiming.LargestContentfulPaint".
type WPTView struct {
	Fields   map[string]float64
	Requests []WPTRequest
}

// UnmarshalJSON keeps every numeric field and the requests array; other values are dropped.
func (v *WPTView) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Fields = make(map[string]float64, len(raw))
	for key, value := range raw {
		if key == "requests" {
			if err := json.Unmarshal(value, &v.Requests); err != nil {
				return fmt.Errorf("failed to decode requests: %w", err)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(value, &f); err == nil {
			v.Fields[key] = f
		}
	}
	return nil
}

// WPTRequest is one network request recorded during a view.
type WPTRequest struct {
	URL     string     `json:"url"`
	Headers WPTHeaders `json:"headers"`
}

// WPTHeaders holds raw "name: value" header lines.
type WPTHeaders struct {
	Request  []string `json:"request"`
	Response []string `json:"response"`
}

// WPTRun is one ordered WebPageTest run, first view only.
type WPTRun struct {
	Index     int
	FirstView *WPTView
	Requests  []WPTRequest
}

// Timing returns a numeric first view field.
func (r WPTRun) Timing(field string) (float64, bool) {
	if r.FirstView == nil {
		return 0, false
	}
	v, ok := r.FirstView.Fields[field]
	return v, ok
}

// ResponseHeaders returns the response header lines of the first request.
func (r WPTRun) ResponseHeaders() ([]string, error) {
	requests := r.Requests
	if r.FirstView != nil && len(r.FirstView.Requests) > 0 {
		requests = r.FirstView.Requests
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("run %d has no recorded requests", r.Index)
	}
	return requests[0].Headers.Response, nil
}
