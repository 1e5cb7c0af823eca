package core

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

var (
	// ErrCheckFailed is returned when at least one metric median exceeds its threshold.
	ErrCheckFailed = errors.New("threshold check failed")

	// ErrNoThresholds is returned when check runs without any threshold.
	ErrNoThresholds = errors.New("no thresholds configured: use --thresholds or a thresholds map in .wpperf.yaml")
)

// GetCheckResult extracts every thresholded metric and compares its median to the threshold.
// Metric expressions are checked in sorted order so output is stable.
func GetCheckResult(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager) (schema.CheckResult, error) {
	if len(cfg.Thresholds) == 0 {
		return schema.CheckResult{}, ErrNoThresholds
	}
	thresholds := make(map[string]float64, len(cfg.Thresholds))
	for expr, threshold := range cfg.Thresholds {
		thresholds[metrics.CanonicalExpression(expr)] = threshold
	}
	expressions := slices.Sorted(maps.Keys(thresholds))

	set, err := pooledTestMetrics(ctx, cfg, client, mgr, cfg.TestIDs, expressionExtractor(expressions))
	if err != nil {
		return schema.CheckResult{}, err
	}
	return evaluateThresholds(set, thresholds), nil
}

// evaluateThresholds fails a metric when its median is strictly above the threshold.
// A metric without any run value fails too, since it cannot prove compliance.
func evaluateThresholds(set schema.MetricSet, thresholds map[string]float64) schema.CheckResult {
	result := schema.CheckResult{
		Passed:     true,
		Source:     set.Source,
		Thresholds: thresholds,
		Metrics:    set.Metrics,
		Failed:     []schema.CheckFailedMetric{},
	}
	for _, m := range set.Metrics {
		threshold := thresholds[m.Name]
		if m.Median > threshold || len(m.Values()) == 0 {
			result.Failed = append(result.Failed, schema.CheckFailedMetric{
				Name:      m.Name,
				Median:    m.Median,
				Threshold: threshold,
			})
		}
	}
	result.Passed = len(result.Failed) == 0
	return result
}
