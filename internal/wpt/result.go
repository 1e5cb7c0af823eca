package wpt

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// ParseResult decodes a completed result document and orders its runs by run number.
// Runs without a first view are kept so run positions line up across metrics.
func ParseResult(data []byte) (*schema.WPTResult, []schema.WPTRun, error) {
	var result schema.WPTResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if result.StatusCode != 200 {
		return nil, nil, fmt.Errorf("%w: status %d: %s", ErrTestFailed, result.StatusCode, result.StatusText)
	}

	runs := make([]schema.WPTRun, 0, len(result.Data.Runs))
	for key, run := range result.Data.Runs {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid run key %q in test %s", key, result.Data.ID)
		}
		runs = append(runs, schema.WPTRun{Index: index, FirstView: run.FirstView, Requests: run.Requests})
	}
	slices.SortFunc(runs, func(a, b schema.WPTRun) int { return a.Index - b.Index })

	if len(runs) == 0 {
		return nil, nil, fmt.Errorf("test %s has no runs", result.Data.ID)
	}
	return &result, runs, nil
}

// AsRuns exposes WebPageTest runs to the metric extractors.
func AsRuns(runs []schema.WPTRun) []contract.Run {
	out := make([]contract.Run, len(runs))
	for i := range runs {
		out[i] = runs[i]
	}
	return out
}
