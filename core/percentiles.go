package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/wpperf/core/stats"
	"github.com/huangsam/wpperf/schema"
)

// ErrNoValues is returned when the percentiles input holds no number at all.
var ErrNoValues = errors.New("no values to summarize")

// ReadValues parses one number per line. Blank and "null" lines are kept as nil
// entries so the caller can report how many runs were missing.
func ReadValues(r io.Reader) ([]*float64, error) {
	var values []*float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.EqualFold(text, "null") {
			values = append(values, nil)
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid number %q", line, text)
		}
		values = append(values, schema.Float(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	return values, nil
}

// SummarizeValues computes the default percentiles and the spread of the non-nil values.
func SummarizeValues(values []*float64) (schema.PercentileSummary, error) {
	compact := stats.Compact(values)
	if len(compact) == 0 {
		return schema.PercentileSummary{}, ErrNoValues
	}
	summary := schema.PercentileSummary{
		Count:       len(compact),
		Missing:     len(values) - len(compact),
		Median:      stats.Median(compact),
		Percentiles: percentileValues(compact),
	}
	if len(compact) >= 2 {
		sd := stats.StandardDeviation(compact, false)
		mad := stats.MedianAbsoluteDeviation(compact)
		summary.StdDev = &sd
		summary.MAD = &mad
	}
	return summary, nil
}
