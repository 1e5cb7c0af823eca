package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/wpperf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewReportStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalReports)
	assert.Equal(t, map[string]int64{reportsTable: 0, metricRunsTable: 0}, status.TableSizes)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.BeginReport("wpt", start, map[string]any{"test": []string{"250601_AB_1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	metric := schema.Metric{Name: "TTFB", Median: 210, Runs: []*float64{ptr(200), nil, ptr(220)}}
	require.NoError(t, store.RecordMetric(id, "250601_AB_1", metric))
	require.NoError(t, store.EndReport(id, start.Add(1500*time.Millisecond), 1))

	second, err := store.BeginReport("benchmark", start.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	reports, err := store.GetAllReports()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "wpt", reports[0].Command)
	assert.True(t, start.Equal(reports[0].StartTime))
	require.NotNil(t, reports[0].EndTime)
	require.NotNil(t, reports[0].RunDurationMs)
	assert.Equal(t, int64(1500), *reports[0].RunDurationMs)
	assert.Equal(t, 1, reports[0].TotalMetrics)
	require.NotNil(t, reports[0].ConfigParams)
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*reports[0].ConfigParams), &params))
	assert.Contains(t, params, "test")

	assert.Nil(t, reports[1].EndTime, "unfinished report has no end time")
	assert.Zero(t, reports[1].TotalMetrics)

	runs, err := store.GetAllMetricRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 1, runs[0].RunIndex)
	require.NotNil(t, runs[0].Value)
	assert.InDelta(t, 200.0, *runs[0].Value, 0.001)
	assert.Nil(t, runs[1].Value, "unavailable run is stored as NULL")
	assert.InDelta(t, 210.0, runs[2].Median, 0.001)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalReports)
	assert.Equal(t, int64(2), status.LastReportID)
	assert.True(t, start.Equal(status.OldestReportTime))
	assert.Equal(t, 1, status.TotalMetrics)
	assert.Equal(t, int64(3), status.TableSizes[metricRunsTable])
}

func TestReportStoreDuplicateRun(t *testing.T) {
	store, err := NewReportStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginReport("wpt", time.Now(), nil)
	require.NoError(t, err)

	metric := schema.Metric{Name: "FCP", Median: 1, Runs: []*float64{ptr(1)}}
	require.NoError(t, store.RecordMetric(id, "t1", metric))
	assert.Error(t, store.RecordMetric(id, "t1", metric), "primary key rejects duplicate runs")

	runs, err := store.GetAllMetricRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestReportStoreNoneBackend(t *testing.T) {
	store, err := NewReportStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.EndReport(1, time.Now(), 3))
	assert.NoError(t, store.RecordMetric(1, "x", schema.Metric{Name: "TTFB"}))

	reports, err := store.GetAllReports()
	assert.NoError(t, err)
	assert.Nil(t, reports)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestEndReportUnknownID(t *testing.T) {
	store, err := NewReportStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndReport(99, time.Now(), 0)
	assert.ErrorContains(t, err, "failed to get start_time for report 99")
}

func TestMigrateHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1))
	// Running again is a no-op
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1))

	store, err := NewReportStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	_, err = store.BeginReport("compare", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, 0))

	assert.ErrorContains(t, MigrateHistory(schema.NoneBackend, "", -1), "not supported")
	assert.ErrorContains(t, MigrateHistory(schema.BadgerBackend, "", -1), "unsupported backend")
}

func TestExecuteHistoryExport(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	require.NoError(t, InitStores("", "", schema.SQLiteBackend, filepath.Join(dir, "history.db")))
	defer CloseStores()

	assert.ErrorContains(t, ExecuteHistoryExport(""), "--output-file is required")
	assert.ErrorContains(t, ExecuteHistoryExport(filepath.Join(dir, "out")), "no report history")

	store := Manager.GetHistoryStore()
	id, err := store.BeginReport("wpt", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordMetric(id, "t1", schema.Metric{Name: "LCP", Median: 2, Runs: []*float64{ptr(2)}}))
	require.NoError(t, store.EndReport(id, time.Now(), 1))

	out := filepath.Join(dir, "out")
	require.NoError(t, ExecuteHistoryExport(out))
	assert.FileExists(t, out+".reports.parquet")
	assert.FileExists(t, out+".metric_runs.parquet")
}
