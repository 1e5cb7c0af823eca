package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
)

// ServerTimingEntry is one metric of a Server-Timing header value.
type ServerTimingEntry struct {
	Name        string
	Duration    float64
	HasDuration bool
	Description string
}

// headerLookup returns the combined value of every header line with one name.
type headerLookup func(lines []string) (string, bool)

// serverTimingHeader is shared by every extractor and built once.
var serverTimingHeader = newHeaderLookup("Server-Timing")

func newHeaderLookup(name string) headerLookup {
	return func(lines []string) (string, bool) {
		var values []string
		for _, line := range lines {
			key, value, ok := strings.Cut(line, ":")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), name) {
				continue
			}
			values = append(values, strings.TrimSpace(value))
		}
		if len(values) == 0 {
			return "", false
		}
		return strings.Join(values, ", "), true
	}
}

// ParseServerTiming splits a Server-Timing header value such as
// `wp-before-template;dur=12.3, cache;desc="Hit";dur=0.4` into entries.
// Entries without a parsable dur parameter are kept with HasDuration unset.
func ParseServerTiming(value string) []ServerTimingEntry {
	var entries []ServerTimingEntry
	for part := range strings.SplitSeq(value, ",") {
		params := strings.Split(part, ";")
		name := strings.TrimSpace(params[0])
		if name == "" {
			continue
		}
		entry := ServerTimingEntry{Name: name}
		for _, param := range params[1:] {
			key, val, _ := strings.Cut(param, "=")
			val = strings.Trim(strings.TrimSpace(val), `"`)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "dur":
				if d, err := strconv.ParseFloat(val, 64); err == nil {
					entry.Duration = d
					entry.HasDuration = true
				}
			case "desc":
				entry.Description = val
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// serverTimingEntries reads the Server-Timing entries of a run. A run without
// the header has no entries; a run without any response is unavailable.
func serverTimingEntries(run contract.Run) ([]ServerTimingEntry, error) {
	headers, err := run.ResponseHeaders()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetricUnavailable, err)
	}
	value, ok := serverTimingHeader(headers)
	if !ok {
		return nil, nil
	}
	return ParseServerTiming(value), nil
}

// serverTimingDurations maps each timed entry name to its first duration.
func serverTimingDurations(entries []ServerTimingEntry) map[string]float64 {
	durations := make(map[string]float64, len(entries))
	for _, e := range entries {
		if !e.HasDuration {
			continue
		}
		if _, seen := durations[e.Name]; !seen {
			durations[e.Name] = e.Duration
		}
	}
	return durations
}

func serverTimingExtractor(name string) Extractor {
	return func(run contract.Run) (float64, error) {
		entries, err := serverTimingEntries(run)
		if err != nil {
			return 0, err
		}
		if d, ok := serverTimingDurations(entries)[name]; ok {
			return d, nil
		}
		return 0, fmt.Errorf("%w: %s%s", ErrServerTimingMissing, ServerTimingPrefix, name)
	}
}
