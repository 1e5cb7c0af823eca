// Package parquet provides data structures and functions for exporting wpperf
// reports and metrics to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/wpperf/schema"
	"github.com/parquet-go/parquet-go"
)

// Report represents a single wpperf command invocation with metadata.
// This struct maps to the wpperf_reports database table.
type Report struct {
	// ReportID is the unique identifier for this report
	ReportID int64 `parquet:"report_id,snappy"`

	// Command is the CLI command that produced the report
	Command string `parquet:"command,snappy,dict"`

	// StartTime is when the command began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the command completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the command in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// TotalMetrics is the number of metrics recorded in this report
	TotalMetrics int32 `parquet:"total_metrics,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MetricRun represents one run value of one metric.
// This struct maps to the wpperf_metric_runs database table.
type MetricRun struct {
	// ReportID references the parent report (zero for direct command output)
	ReportID int64 `parquet:"report_id,snappy"`

	// Source is the WebPageTest test ID or benchmarked URL
	Source string `parquet:"source,snappy,dict"`

	// MetricName is the metric expression
	MetricName string `parquet:"metric_name,snappy,dict"`

	// RunIndex is the 1-based run number
	RunIndex int32 `parquet:"run_index,snappy"`

	// Value is the metric value for the run (nullable when unavailable)
	Value *float64 `parquet:"value,optional,snappy"`

	// Median is the median across all runs of the metric
	Median float64 `parquet:"median,snappy"`
}

// write writes rows of any struct type to a Parquet file.
func write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteReportsParquet writes a slice of Report structs to a Parquet file.
func WriteReportsParquet(data []Report, outputPath string) error {
	return write(data, outputPath)
}

// WriteMetricRunsParquet writes a slice of MetricRun structs to a Parquet file.
func WriteMetricRunsParquet(data []MetricRun, outputPath string) error {
	return write(data, outputPath)
}

// ConvertReportRecords converts schema.ReportRecord to Report for Parquet export.
func ConvertReportRecords(records []schema.ReportRecord) []Report {
	result := make([]Report, len(records))
	for i, record := range records {
		result[i] = Report{
			ReportID:      record.ReportID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalMetrics:  int32(record.TotalMetrics),
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricRunRecords converts schema.MetricRunRecord to MetricRun for Parquet export.
func ConvertMetricRunRecords(records []schema.MetricRunRecord) []MetricRun {
	result := make([]MetricRun, len(records))
	for i, record := range records {
		result[i] = MetricRun{
			ReportID:   record.ReportID,
			Source:     record.Source,
			MetricName: record.MetricName,
			RunIndex:   int32(record.RunIndex),
			Value:      record.Value,
			Median:     record.Median,
		}
	}
	return result
}

// FlattenMetrics expands metrics into one row per run, tagged with source.
func FlattenMetrics(source string, metrics []schema.Metric) []MetricRun {
	var rows []MetricRun
	for _, m := range metrics {
		for i, v := range m.Runs {
			rows = append(rows, MetricRun{
				Source:     source,
				MetricName: m.Name,
				RunIndex:   int32(i + 1),
				Value:      v,
				Median:     m.Median,
			})
		}
	}
	return rows
}

// MetricDelta is one row of a comparison export.
type MetricDelta struct {
	Base         string   `parquet:"base,snappy,dict"`
	Target       string   `parquet:"target,snappy,dict"`
	MetricName   string   `parquet:"metric_name,snappy,dict"`
	BaseMedian   float64  `parquet:"base_median,snappy"`
	TargetMedian float64  `parquet:"target_median,snappy"`
	Delta        float64  `parquet:"delta,snappy"`
	DeltaPercent *float64 `parquet:"delta_percent,optional,snappy"`
	Direction    string   `parquet:"direction,snappy,dict"`
}

// WriteMetricDeltasParquet writes a slice of MetricDelta structs to a Parquet file.
func WriteMetricDeltasParquet(data []MetricDelta, outputPath string) error {
	return write(data, outputPath)
}

// ConvertComparison flattens a comparison result into Parquet rows.
func ConvertComparison(result schema.ComparisonResult) []MetricDelta {
	rows := make([]MetricDelta, len(result.Results))
	for i, d := range result.Results {
		rows[i] = MetricDelta{
			Base:         result.Base,
			Target:       result.Target,
			MetricName:   d.Name,
			BaseMedian:   d.BaseMedian,
			TargetMedian: d.TargetMedian,
			Delta:        d.Delta,
			DeltaPercent: d.DeltaPercent,
			Direction:    string(d.Direction),
		}
	}
	return rows
}
