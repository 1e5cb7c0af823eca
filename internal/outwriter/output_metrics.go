package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/parquet"
	"github.com/huangsam/wpperf/schema"
)

// ErrParquetOutputFile is returned when parquet output has no destination file.
var ErrParquetOutputFile = errors.New("parquet output requires --output-file")

// PrintMetricReports outputs metric reports, dispatching based on the output format configured.
func PrintMetricReports(reports []schema.MetricReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, reports)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, reports)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricReportsCSV(w, reports, fmtFloat, fmtOptional)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeMetricReportsParquet(reports, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricReportsText(w, reports, cfg, fmtFloat, fmtOptional, duration)
		}, "Wrote table")
	}
}

// writeMetricReportsText renders one table per report followed by a completion line.
func writeMetricReportsText(w io.Writer, reports []schema.MetricReport, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string, duration time.Duration) error {
	for i, report := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeMetricReportText(w, report, cfg, fmtFloat, fmtOptional); err != nil {
			return err
		}
	}
	if cfg.Output == schema.MarkdownOut {
		return nil
	}
	_, err := fmt.Fprintf(w, "Completed in %v with %d workers. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

// writeMetricReportText writes the heading and metric table of a single report.
func writeMetricReportText(w io.Writer, report schema.MetricReport, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	if _, err := fmt.Fprintf(w, "%s (%d runs)\n", reportTitle(report, cfg), report.Runs); err != nil {
		return err
	}
	if report.Benchmark != nil {
		if _, err := fmt.Fprintln(w, formatBenchmarkInfo(*report.Benchmark)); err != nil {
			return err
		}
	}
	if report.Error != "" {
		_, err := fmt.Fprintf(w, "Error: %s\n", report.Error)
		return err
	}
	if len(report.Metrics) == 0 {
		_, err := fmt.Fprintln(w, "No metrics found")
		return err
	}

	headers, valueColumns := metricHeaders(report, cfg)
	labelWidth := getMaxLabelWidth(cfg, valueColumns)
	rows := make([][]string, 0, len(report.Metrics))
	for _, m := range report.Metrics {
		row := []string{contract.TruncateLabel(m.Name, labelWidth), m.Unit}
		row = append(row, metricValues(m, report.Runs, cfg, fmtFloat, fmtOptional)...)
		rows = append(rows, row)
	}
	return renderTable(newTable(w, cfg), headers, rows)
}

func reportTitle(report schema.MetricReport, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.NeutralColor.Sprint(report.Source)
	}
	return report.Source
}

// metricHeaders returns the table headers and the number of value columns.
func metricHeaders(report schema.MetricReport, cfg *contract.Config) ([]string, int) {
	headers := []string{"Metric", "Unit"}
	if cfg.ShowPercentiles {
		for _, p := range schema.DefaultPercentiles {
			headers = append(headers, percentileLabel(p))
		}
	} else {
		headers = append(headers, "Median")
	}
	headers = append(headers, "Samples")
	if cfg.ShowVariance {
		headers = append(headers, "Std Dev", "MAD")
	}
	if cfg.IncludeRuns {
		for i := range report.Runs {
			headers = append(headers, "Run "+strconv.Itoa(i+1))
		}
	}
	return headers, len(headers) - 2
}

// metricValues formats the value columns of one metric in header order.
func metricValues(m schema.MetricSummary, runs int, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string) []string {
	var values []string
	if cfg.ShowPercentiles {
		for _, pv := range m.Percentiles {
			values = append(values, fmtFloat(pv.Value))
		}
	} else {
		values = append(values, fmtFloat(m.Median))
	}
	values = append(values, strconv.Itoa(m.Samples))
	if cfg.ShowVariance {
		values = append(values, fmtOptional(m.StdDev), fmtOptional(m.MAD))
	}
	if cfg.IncludeRuns {
		for i := range runs {
			var v *float64
			if i < len(m.Runs) {
				v = m.Runs[i]
			}
			values = append(values, fmtOptional(v))
		}
	}
	return values
}

func formatBenchmarkInfo(b schema.BenchmarkInfo) string {
	return fmt.Sprintf("%s, %d requests (%d ok, %d failed), concurrency %d, took %v",
		b.Protocol, b.Requests, b.Succeeded, b.Failed, b.Concurrency, b.Duration.Round(time.Millisecond))
}

// writeMetricReportsCSV writes one row per metric with every statistic and the joined runs.
func writeMetricReportsCSV(w io.Writer, reports []schema.MetricReport, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	header := []string{"source", "metric", "unit", "median", "samples"}
	for _, p := range schema.DefaultPercentiles {
		header = append(header, percentileLabel(p))
	}
	header = append(header, "std_dev", "mad", "runs", "error")

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, report := range reports {
			if report.Error != "" {
				row := make([]string, len(header))
				row[0] = report.Source
				row[len(row)-1] = report.Error
				if err := csvWriter.Write(row); err != nil {
					return err
				}
				continue
			}
			for _, m := range report.Metrics {
				row := []string{report.Source, m.Name, m.Unit, fmtFloat(m.Median), strconv.Itoa(m.Samples)}
				for _, pv := range m.Percentiles {
					row = append(row, fmtFloat(pv.Value))
				}
				row = append(row, optionalCSV(m.StdDev, fmtOptional), optionalCSV(m.MAD, fmtOptional), joinRuns(m.Runs, fmtOptional), "")
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// optionalCSV leaves missing values empty instead of using the table placeholder.
func optionalCSV(v *float64, fmtOptional func(*float64) string) string {
	if v == nil {
		return ""
	}
	return fmtOptional(v)
}

// joinRuns renders runs as "1.0|null|3.0".
func joinRuns(runs []*float64, fmtOptional func(*float64) string) string {
	parts := make([]string, len(runs))
	for i, v := range runs {
		if v == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = fmtOptional(v)
	}
	return strings.Join(parts, "|")
}

// writeMetricReportsParquet writes one row per metric run.
func writeMetricReportsParquet(reports []schema.MetricReport, outputFile string) error {
	if outputFile == "" {
		return ErrParquetOutputFile
	}
	var rows []parquet.MetricRun
	for _, report := range reports {
		ms := make([]schema.Metric, len(report.Metrics))
		for i, m := range report.Metrics {
			ms[i] = schema.Metric{Name: m.Name, Median: m.Median, Runs: m.Runs}
		}
		rows = append(rows, parquet.FlattenMetrics(report.Source, ms)...)
	}
	if err := parquet.WriteMetricRunsParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}
