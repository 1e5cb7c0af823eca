package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/wpperf/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err, "Should be able to open output file")
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	return rows[:n]
}

func TestReportStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Report))
	require.NotNil(t, s)

	for _, colName := range []string{"report_id", "command", "start_time", "end_time", "run_duration_ms", "total_metrics", "config_params"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestMetricRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(MetricRun))
	require.NotNil(t, s)

	for _, colName := range []string{"report_id", "source", "metric_name", "run_index", "value", "median"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteReportsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "reports.parquet")

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	records := []schema.ReportRecord{
		{ReportID: 1, Command: "wpt", StartTime: start, EndTime: &end, RunDurationMs: ptr(int64(90000)), TotalMetrics: 5, ConfigParams: ptr(`{"test":["abc"]}`)},
		{ReportID: 2, Command: "benchmark", StartTime: start.Add(time.Hour)},
	}

	data := ConvertReportRecords(records)
	require.NoError(t, WriteReportsParquet(data, outputPath))

	got := readAll[Report](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ReportID)
	assert.Equal(t, "wpt", got[0].Command)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Millisecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int64(90000), *got[0].RunDurationMs)
	assert.Equal(t, int32(5), got[0].TotalMetrics)

	assert.Equal(t, "benchmark", got[1].Command)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteMetricRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metric_runs.parquet")

	metrics := []schema.Metric{
		{Name: "TTFB", Median: 210, Runs: []*float64{ptr(200.0), ptr(210.0), ptr(230.0)}},
		{Name: "Server-Timing:db", Median: 12, Runs: []*float64{ptr(12.0), nil}},
	}
	data := FlattenMetrics("250301_AB_1", metrics)
	require.Len(t, data, 5)
	assert.Equal(t, int32(1), data[0].RunIndex)
	assert.Equal(t, int32(2), data[4].RunIndex)

	require.NoError(t, WriteMetricRunsParquet(data, outputPath))

	got := readAll[MetricRun](t, outputPath)
	require.Len(t, got, 5)
	assert.Equal(t, "250301_AB_1", got[0].Source)
	assert.Equal(t, "TTFB", got[0].MetricName)
	require.NotNil(t, got[2].Value)
	assert.InDelta(t, 230.0, *got[2].Value, 0.001)
	assert.Nil(t, got[4].Value, "unavailable run should stay null")
	assert.InDelta(t, 12.0, got[4].Median, 0.001)
}

func TestConvertMetricRunRecords(t *testing.T) {
	records := []schema.MetricRunRecord{
		{ReportID: 7, Source: "https://example.com", MetricName: "TTFB", RunIndex: 3, Value: ptr(99.5), Median: 100},
	}
	got := ConvertMetricRunRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, MetricRun{ReportID: 7, Source: "https://example.com", MetricName: "TTFB", RunIndex: 3, Value: ptr(99.5), Median: 100}, got[0])
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteReportsParquet([]Report{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Parquet footer should still be written")
	assert.Empty(t, readAll[Report](t, outputPath))
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteMetricRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}

func TestWriteMetricDeltasParquet(t *testing.T) {
	result := schema.ComparisonResult{
		Base:   "A",
		Target: "B",
		Results: []schema.MetricDelta{
			{Name: "TTFB", BaseMedian: 200, TargetMedian: 250, Delta: 50, DeltaPercent: ptr(25.0), Direction: schema.Regressed},
			{Name: "CLS", Direction: schema.Unchanged},
		},
	}
	path := filepath.Join(t.TempDir(), "deltas.parquet")
	require.NoError(t, WriteMetricDeltasParquet(ConvertComparison(result), path))

	rows := readAll[MetricDelta](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Base)
	assert.Equal(t, "regressed", rows[0].Direction)
	require.NotNil(t, rows[0].DeltaPercent)
	assert.Equal(t, 25.0, *rows[0].DeltaPercent)
	assert.Nil(t, rows[1].DeltaPercent)
}
