package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// ServerTimingPrefix selects a metric read from the Server-Timing response header.
const ServerTimingPrefix = "Server-Timing:"

// Extractor reads one metric value from a run.
type Extractor func(run contract.Run) (float64, error)

var vocabulary = []schema.MetricDefinition{
	{Name: "TTFB", Field: "TTFB", Unit: "ms", Description: "Time to first byte of the main document"},
	{Name: "FCP", Field: "firstContentfulPaint", Unit: "ms", Description: "First Contentful Paint"},
	{Name: "LCP", Field: "chromeUserTiming.LargestContentfulPaint", Unit: "ms", Description: "Largest Contentful Paint"},
	{Name: "CLS", Field: "chromeUserTiming.CumulativeLayoutShift", Unit: "", Description: "Cumulative Layout Shift"},
	{Name: "TBT", Field: "TotalBlockingTime", Unit: "ms", Description: "Total Blocking Time"},
	{Name: "Speed Index", Field: "SpeedIndex", Unit: "ms", Description: "Speed Index"},
	{Name: "Time to Interactive", Field: "TimeToInteractive", Unit: "ms", Description: "Time until the page is reliably interactive"},
	{Name: "Start Render", Field: "render", Unit: "ms", Description: "First non-blank frame"},
	{Name: "First Paint", Field: "firstPaint", Unit: "ms", Description: "First paint reported by the browser"},
	{Name: "DOM Content Loaded", Field: "domContentLoadedEventStart", Unit: "ms", Description: "Start of the DOMContentLoaded event"},
	{Name: "Load Time", Field: "loadTime", Unit: "ms", Description: "Start of the load event"},
	{Name: "Fully Loaded", Field: "fullyLoaded", Unit: "ms", Description: "Network activity settled after load"},
	{Name: "DOM Elements", Field: "domElements", Unit: "count", Description: "Number of DOM elements"},
	{Name: "Requests", Field: "requestsFull", Unit: "count", Description: "Number of requests"},
	{Name: "Bytes In", Field: "bytesIn", Unit: "bytes", Description: "Bytes downloaded"},
	{Name: "Response Time", Field: "responseTime", Unit: "ms", Description: "Time until the full response was received"},
}

var fieldsByName = func() map[string]string {
	m := make(map[string]string, len(vocabulary))
	for _, def := range vocabulary {
		m[def.Name] = def.Field
	}
	return m
}()

// Vocabulary lists the metric names accepted by BindExtractor, besides Server-Timing metrics.
func Vocabulary() []schema.MetricDefinition {
	return slices.Clone(vocabulary)
}

// BindExtractor maps one metric name to its extractor.
// Unknown names fail with ErrUnsupportedMetric.
func BindExtractor(name string) (Extractor, error) {
	if timing, ok := strings.CutPrefix(name, ServerTimingPrefix); ok {
		if timing == "" {
			return nil, fmt.Errorf("%w: %q has no Server-Timing name", ErrUnsupportedMetric, name)
		}
		return serverTimingExtractor(timing), nil
	}
	field, ok := fieldsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, name)
	}
	return func(run contract.Run) (float64, error) {
		v, ok := run.Timing(field)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMetricUnavailable, name)
		}
		return v, nil
	}, nil
}

var unitsByName = func() map[string]string {
	m := make(map[string]string, len(vocabulary))
	for _, def := range vocabulary {
		m[def.Name] = def.Unit
	}
	return m
}()

// UnitOf returns the display unit of a metric expression. Mixed units give "".
func UnitOf(expr string) string {
	unit, first := "", true
	for additive := range strings.SplitSeq(expr, addOperator) {
		for _, name := range strings.Split(additive, subtractOperator) {
			u := unitsByName[name]
			if strings.HasPrefix(name, ServerTimingPrefix) {
				u = "ms"
			}
			if first {
				unit, first = u, false
			} else if u != unit {
				return ""
			}
		}
	}
	return unit
}

// CanonicalExpression restores the vocabulary spelling of every term of expr,
// matching names case-insensitively. Config loaders lowercase map keys, so
// "lcp - ttfb" becomes "LCP - TTFB". Server-Timing names are case-sensitive
// and only their prefix is normalized.
func CanonicalExpression(expr string) string {
	additives := strings.Split(expr, addOperator)
	for i, additive := range additives {
		names := strings.Split(additive, subtractOperator)
		for j, name := range names {
			names[j] = canonicalName(name)
		}
		additives[i] = strings.Join(names, subtractOperator)
	}
	return strings.Join(additives, addOperator)
}

func canonicalName(name string) string {
	if len(name) >= len(ServerTimingPrefix) && strings.EqualFold(name[:len(ServerTimingPrefix)], ServerTimingPrefix) {
		return ServerTimingPrefix + name[len(ServerTimingPrefix):]
	}
	for _, def := range vocabulary {
		if strings.EqualFold(def.Name, name) {
			return def.Name
		}
	}
	return name
}
