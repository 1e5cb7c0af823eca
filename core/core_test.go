package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/iocache"
	"github.com/huangsam/wpperf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeResultClient serves canned result documents keyed by test ID.
type fakeResultClient struct {
	mu      sync.Mutex
	results map[string]string
	calls   map[string]int
}

var _ contract.ResultClient = &fakeResultClient{}

func newFakeResultClient(results map[string]string) *fakeResultClient {
	return &fakeResultClient{results: results, calls: map[string]int{}}
}

func (c *fakeResultClient) GetResult(_ context.Context, testID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[testID]++
	doc, ok := c.results[testID]
	if !ok {
		return nil, fmt.Errorf("test %s not found", testID)
	}
	return []byte(doc), nil
}

func (c *fakeResultClient) BaseURL() string { return "https://wpt.example.test" }

// wptRun is one run of a synthetic result document.
type wptRun struct {
	ttfb, lcp    float64
	serverTiming string
}

// wptDocument renders a completed jsonResult document with one entry per run.
func wptDocument(id string, runs ...wptRun) string {
	entries := make([]string, len(runs))
	for i, r := range runs {
		headers := `["HTTP/2 200"]`
		if r.serverTiming != "" {
			headers = fmt.Sprintf(`["HTTP/2 200", "server-timing: %s"]`, r.serverTiming)
		}
		entries[i] = fmt.Sprintf(`"%d": {"firstView": {"TTFB": %g, "chromeUserTiming.LargestContentfulPaint": %g,
			"requests": [{"url": "https://wp.example.test/", "headers": {"response": %s}}]}}`, i+1, r.ttfb, r.lcp, headers)
	}
	return fmt.Sprintf(`{"statusCode": 200, "statusText": "Test Complete", "data": {"id": %q, "runs": {%s}}}`,
		id, strings.Join(entries, ","))
}

func testConfig() *contract.Config {
	return &contract.Config{
		WPTServer: "https://wpt.example.test",
		Metrics:   []string{"TTFB", "LCP"},
		Workers:   2,
		Precision: 1,
		Output:    schema.JSONOut,
	}
}

// noStores returns a manager without result cache or history.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)
	return mgr
}

func TestPooledTestMetrics(t *testing.T) {
	client := newFakeResultClient(map[string]string{
		"A": wptDocument("A", wptRun{ttfb: 100, lcp: 1000}, wptRun{ttfb: 200, lcp: 1200}),
		"B": wptDocument("B", wptRun{ttfb: 300, lcp: 1400}),
	})
	cfg := testConfig()

	set, err := pooledTestMetrics(context.Background(), cfg, client, noStores(), []string{"A", "B"}, expressionExtractor(cfg.Metrics))
	require.NoError(t, err)
	assert.Equal(t, "A,B", set.Source)
	assert.Equal(t, 3, set.Runs)
	require.Len(t, set.Metrics, 2)
	assert.Equal(t, "TTFB", set.Metrics[0].Name)
	assert.Equal(t, []float64{100, 200, 300}, set.Metrics[0].Values())
	assert.Equal(t, 200.0, set.Metrics[0].Median)
	assert.Equal(t, 1200.0, set.Metrics[1].Median)

	t.Run("no tests", func(t *testing.T) {
		_, err := pooledTestMetrics(context.Background(), cfg, client, noStores(), nil, expressionExtractor(cfg.Metrics))
		assert.ErrorIs(t, err, ErrNoTests)
	})

	t.Run("fetch failure", func(t *testing.T) {
		_, err := pooledTestMetrics(context.Background(), cfg, client, noStores(), []string{"A", "missing"}, expressionExtractor(cfg.Metrics))
		assert.ErrorContains(t, err, "missing")
	})

	t.Run("unsupported metric", func(t *testing.T) {
		_, err := pooledTestMetrics(context.Background(), cfg, client, noStores(), []string{"A"}, expressionExtractor([]string{"Nope"}))
		assert.ErrorContains(t, err, "unsupported metric")
	})
}

func TestGetWPTMetricsResultsRecordsHistory(t *testing.T) {
	client := newFakeResultClient(map[string]string{
		"A": wptDocument("A", wptRun{ttfb: 100, lcp: 1000}, wptRun{ttfb: 300, lcp: 2000}),
	})
	cfg := testConfig()
	cfg.TestIDs = []string{"A"}

	history := &iocache.MockReportStore{}
	history.On("BeginReport", "wpt-metrics", mock.Anything, mock.Anything).Return(int64(7), nil)
	history.On("RecordMetric", int64(7), "A", mock.Anything).Return(nil)
	history.On("EndReport", int64(7), mock.Anything, 2).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	report, err := GetWPTMetricsResults(context.Background(), cfg, client, mgr)
	require.NoError(t, err)
	assert.Equal(t, "A", report.Source)
	assert.Equal(t, 2, report.Runs)
	require.Len(t, report.Metrics, 2)
	assert.Equal(t, "ms", report.Metrics[0].Unit)
	assert.Equal(t, 200.0, report.Metrics[0].Median)
	require.NotNil(t, report.Metrics[0].StdDev)
	assert.InDelta(t, 141.42, *report.Metrics[0].StdDev, 0.01)
	history.AssertExpectations(t)
}

// failingHistory expects a report that is opened and then closed without metrics.
func failingHistory(command string) (*iocache.MockReportStore, *iocache.MockCacheManager) {
	history := &iocache.MockReportStore{}
	history.On("BeginReport", command, mock.Anything, mock.Anything).Return(int64(9), nil)
	history.On("EndReport", int64(9), mock.Anything, 0).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)
	return history, mgr
}

func TestFailedCommandsCloseHistoryReport(t *testing.T) {
	client := newFakeResultClient(map[string]string{})
	cfg := testConfig()
	cfg.TestIDs = []string{"missing"}

	t.Run("wpt metrics", func(t *testing.T) {
		history, mgr := failingHistory("wpt-metrics")
		_, err := GetWPTMetricsResults(context.Background(), cfg, client, mgr)
		require.Error(t, err)
		history.AssertExpectations(t)
		history.AssertNotCalled(t, "RecordMetric", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wpt server timing", func(t *testing.T) {
		history, mgr := failingHistory("wpt-server-timing")
		_, err := GetWPTServerTimingResults(context.Background(), cfg, client, mgr)
		require.Error(t, err)
		history.AssertExpectations(t)
	})

	t.Run("benchmark", func(t *testing.T) {
		bcfg := testConfig()
		bcfg.URLs = []string{"https://down.test/"}
		history, mgr := failingHistory("benchmark-server-timing")
		_, err := GetBenchmarkResults(context.Background(), bcfg, &fakeBenchmarker{}, mgr)
		require.Error(t, err)
		history.AssertExpectations(t)
	})
}

func TestGetWPTServerTimingResults(t *testing.T) {
	client := newFakeResultClient(map[string]string{
		"A": wptDocument("A",
			wptRun{ttfb: 100, serverTiming: "wp-total;dur=80, cache;desc=hit, db;dur=10"},
			wptRun{ttfb: 100, serverTiming: "db;dur=12, wp-total;dur=90"}),
		"B": wptDocument("B", wptRun{ttfb: 100, serverTiming: "wp-total;dur=100, db;dur=14"}),
	})
	cfg := testConfig()
	cfg.TestIDs = []string{"A", "B"}

	report, err := GetWPTServerTimingResults(context.Background(), cfg, client, noStores())
	require.NoError(t, err)
	require.Len(t, report.Metrics, 2)
	assert.Equal(t, "Server-Timing:wp-total", report.Metrics[0].Name)
	assert.Equal(t, 90.0, report.Metrics[0].Median)
	assert.Equal(t, "Server-Timing:db", report.Metrics[1].Name)
	assert.Equal(t, 12.0, report.Metrics[1].Median)

	t.Run("inconsistent runs", func(t *testing.T) {
		client := newFakeResultClient(map[string]string{
			"C": wptDocument("C", wptRun{serverTiming: "wp-total;dur=80"}, wptRun{serverTiming: "db;dur=3"}),
		})
		cfg.TestIDs = []string{"C"}
		_, err := GetWPTServerTimingResults(context.Background(), cfg, client, noStores())
		assert.ErrorContains(t, err, "test C")
	})
}

func TestFetchAllTestRunsUsesCache(t *testing.T) {
	doc := wptDocument("A", wptRun{ttfb: 100, lcp: 1000})
	client := newFakeResultClient(map[string]string{"A": doc})
	key := resultCacheKey(client.BaseURL(), "A")

	t.Run("miss then store", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errors.New("miss"))
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		runs, err := fetchAllTestRuns(context.Background(), testConfig(), client, mgr, []string{"A"})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Len(t, runs[0], 1)
		store.AssertExpectations(t)
	})

	t.Run("hit skips fetch", func(t *testing.T) {
		client := newFakeResultClient(nil)
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(iocache.CompressValue([]byte(doc)), currentCacheVersion, time.Now().Unix(), nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		runs, err := fetchAllTestRuns(context.Background(), testConfig(), client, mgr, []string{"A"})
		require.NoError(t, err)
		assert.Len(t, runs[0], 1)
		assert.Zero(t, client.calls["A"])
	})

	t.Run("stale entry refetched", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		stale := time.Now().Add(-contract.CacheTTL - time.Hour).Unix()
		store.On("Get", key).Return(iocache.CompressValue([]byte(doc)), currentCacheVersion, stale, nil)
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		_, err := fetchAllTestRuns(context.Background(), testConfig(), client, mgr, []string{"A"})
		require.NoError(t, err)
		store.AssertCalled(t, "Set", key, mock.Anything, currentCacheVersion, mock.Anything)
	})

	t.Run("failed test not cached", func(t *testing.T) {
		client := newFakeResultClient(map[string]string{"F": `{"statusCode": 400, "statusText": "Test not found"}`})
		fkey := resultCacheKey(client.BaseURL(), "F")
		store := &iocache.MockCacheStore{}
		store.On("Get", fkey).Return(nil, 0, int64(0), errors.New("miss"))
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		_, err := fetchAllTestRuns(context.Background(), testConfig(), client, mgr, []string{"F"})
		require.Error(t, err)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// fakeBenchmarker returns canned benchmark results keyed by URL.
type fakeBenchmarker struct {
	results map[string]schema.BenchmarkResult
}

func (b *fakeBenchmarker) Benchmark(_ context.Context, url string) (schema.BenchmarkResult, error) {
	res, ok := b.results[url]
	if !ok {
		return schema.BenchmarkResult{}, errors.New("connection refused")
	}
	return res, nil
}

func responseRun(ttfb, total float64, serverTiming string) schema.ResponseRun {
	return schema.ResponseRun{
		StatusCode:   200,
		TTFB:         ttfb,
		ResponseTime: total,
		Headers:      []string{"content-type: text/html", "server-timing: " + serverTiming},
	}
}

func TestGetBenchmarkResults(t *testing.T) {
	b := &fakeBenchmarker{results: map[string]schema.BenchmarkResult{
		"https://a.test/": {
			SessionID: "s1", URL: "https://a.test/", Protocol: schema.HTTP2, Requests: 2, Succeeded: 2,
			Runs: []schema.ResponseRun{responseRun(10, 20, "wp;dur=5"), responseRun(30, 40, "wp;dur=7")},
		},
	}}
	cfg := testConfig()
	cfg.URLs = []string{"https://a.test/", "https://down.test/"}

	reports, err := GetBenchmarkResults(context.Background(), cfg, b, noStores())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	ok := reports[0]
	assert.Equal(t, "https://a.test/", ok.Source)
	assert.Equal(t, 2, ok.Runs)
	require.Len(t, ok.Metrics, 3)
	assert.Equal(t, "TTFB", ok.Metrics[0].Name)
	assert.Equal(t, 20.0, ok.Metrics[0].Median)
	assert.Equal(t, "Response Time", ok.Metrics[1].Name)
	assert.Equal(t, "Server-Timing:wp", ok.Metrics[2].Name)
	assert.Equal(t, 6.0, ok.Metrics[2].Median)
	require.NotNil(t, ok.Benchmark)
	assert.Equal(t, "s1", ok.Benchmark.SessionID)

	assert.Equal(t, "https://down.test/", reports[1].Source)
	assert.Equal(t, "connection refused", reports[1].Error)

	t.Run("all failed", func(t *testing.T) {
		cfg.URLs = []string{"https://down.test/"}
		_, err := GetBenchmarkResults(context.Background(), cfg, b, noStores())
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("no urls", func(t *testing.T) {
		cfg.URLs = nil
		_, err := GetBenchmarkResults(context.Background(), cfg, b, noStores())
		assert.ErrorIs(t, err, ErrNoURLs)
	})
}

func TestCompareMetricSets(t *testing.T) {
	base := schema.MetricSet{Source: "A", Metrics: []schema.Metric{
		{Name: "TTFB", Median: 200, Runs: []*float64{schema.Float(200)}},
		{Name: "LCP", Median: 2000, Runs: []*float64{schema.Float(2000)}},
		{Name: "CLS", Median: 0, Runs: []*float64{schema.Float(0)}},
		{Name: "TBT", Median: 0, Runs: []*float64{nil}},
	}}
	target := schema.MetricSet{Source: "B", Metrics: []schema.Metric{
		{Name: "TTFB", Median: 250, Runs: []*float64{schema.Float(250)}},
		{Name: "LCP", Median: 1500, Runs: []*float64{schema.Float(1500)}},
		{Name: "CLS", Median: 0, Runs: []*float64{schema.Float(0)}},
		{Name: "TBT", Median: 50, Runs: []*float64{schema.Float(50)}},
	}}

	result := compareMetricSets(base, target)
	assert.Equal(t, "A", result.Base)
	assert.Equal(t, "B", result.Target)
	require.Len(t, result.Results, 4)

	ttfb := result.Results[0]
	assert.Equal(t, 50.0, ttfb.Delta)
	require.NotNil(t, ttfb.DeltaPercent)
	assert.Equal(t, 25.0, *ttfb.DeltaPercent)
	assert.Equal(t, schema.Regressed, ttfb.Direction)

	assert.Equal(t, schema.Improved, result.Results[1].Direction)
	assert.Equal(t, -25.0, *result.Results[1].DeltaPercent)

	assert.Equal(t, schema.Unchanged, result.Results[2].Direction)
	assert.Nil(t, result.Results[2].DeltaPercent, "zero base has no percentage")

	assert.Equal(t, schema.Unknown, result.Results[3].Direction)
	assert.Equal(t, 0, result.Results[3].BaseRuns)
}

func TestGetComparisonResults(t *testing.T) {
	client := newFakeResultClient(map[string]string{
		"A": wptDocument("A", wptRun{ttfb: 100, lcp: 1000}),
		"B": wptDocument("B", wptRun{ttfb: 150, lcp: 900}),
	})
	cfg := testConfig()
	cfg.BaseTestIDs = []string{"A"}
	cfg.TargetTestIDs = []string{"B"}

	result, err := GetComparisonResults(context.Background(), cfg, client, noStores())
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, schema.Regressed, result.Results[0].Direction)
	assert.Equal(t, schema.Improved, result.Results[1].Direction)
}

func TestGetCheckResult(t *testing.T) {
	client := newFakeResultClient(map[string]string{
		"A": wptDocument("A", wptRun{ttfb: 100, lcp: 3000}, wptRun{ttfb: 300, lcp: 2000}),
	})
	cfg := testConfig()
	cfg.TestIDs = []string{"A"}

	t.Run("no thresholds", func(t *testing.T) {
		_, err := GetCheckResult(context.Background(), cfg, client, noStores())
		assert.ErrorIs(t, err, ErrNoThresholds)
	})

	t.Run("lowercased keys", func(t *testing.T) {
		cfg.Thresholds = map[string]float64{"ttfb": 250, "lcp - ttfb": 1000}
		result, err := GetCheckResult(context.Background(), cfg, client, noStores())
		require.NoError(t, err)
		assert.False(t, result.Passed)
		require.Len(t, result.Metrics, 2)
		assert.Equal(t, "LCP - TTFB", result.Metrics[0].Name)
		assert.Equal(t, "TTFB", result.Metrics[1].Name)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "LCP - TTFB", result.Failed[0].Name)
		assert.Equal(t, 2300.0, result.Failed[0].Median)
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		cfg.Thresholds = map[string]float64{"TTFB": 200}
		result, err := GetCheckResult(context.Background(), cfg, client, noStores())
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Empty(t, result.Failed)
	})
}

func TestEvaluateThresholdsMissingValues(t *testing.T) {
	set := schema.MetricSet{Metrics: []schema.Metric{{Name: "TBT", Runs: []*float64{nil, nil}}}}
	result := evaluateThresholds(set, map[string]float64{"TBT": 100})
	assert.False(t, result.Passed)
	require.Len(t, result.Failed, 1)
}
