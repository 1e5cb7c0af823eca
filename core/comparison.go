package core

import (
	"context"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// GetComparisonResults extracts the configured metrics from the base and target
// test sets and computes the median delta of each.
func GetComparisonResults(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager) (schema.ComparisonResult, error) {
	extract := expressionExtractor(cfg.Metrics)
	base, err := pooledTestMetrics(ctx, cfg, client, mgr, cfg.BaseTestIDs, extract)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	target, err := pooledTestMetrics(ctx, cfg, client, mgr, cfg.TargetTestIDs, extract)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	return compareMetricSets(base, target), nil
}

// compareMetricSets pairs metrics by name in base order. Both sets come from the
// same expressions so every base metric has a target counterpart.
func compareMetricSets(base, target schema.MetricSet) schema.ComparisonResult {
	results := make([]schema.MetricDelta, 0, len(base.Metrics))
	for _, b := range base.Metrics {
		var t schema.Metric
		for _, m := range target.Metrics {
			if m.Name == b.Name {
				t = m
				break
			}
		}
		results = append(results, compareMetric(b, t))
	}
	return schema.ComparisonResult{Base: base.Source, Target: target.Source, Results: results}
}

// compareMetric computes target minus base. Every metric in the vocabulary is
// lower-is-better, so a positive delta is a regression.
func compareMetric(base, target schema.Metric) schema.MetricDelta {
	d := schema.MetricDelta{
		Name:         base.Name,
		BaseMedian:   base.Median,
		TargetMedian: target.Median,
		Delta:        target.Median - base.Median,
		BaseRuns:     len(base.Values()),
		TargetRuns:   len(target.Values()),
	}
	if base.Median != 0 {
		pct := d.Delta / base.Median * 100
		d.DeltaPercent = &pct
	}
	d.Direction = deltaDirection(d)
	return d
}

func deltaDirection(d schema.MetricDelta) schema.Direction {
	switch {
	case d.BaseRuns == 0 || d.TargetRuns == 0:
		return schema.Unknown
	case d.Delta > 0:
		return schema.Regressed
	case d.Delta < 0:
		return schema.Improved
	default:
		return schema.Unchanged
	}
}
