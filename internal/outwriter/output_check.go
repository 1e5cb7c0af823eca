package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// PrintCheckResult prints the check result in a concise format suitable for CI/CD.
func PrintCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, result)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for check")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

func checkLabel(passed bool, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorCheckLabel(passed)
	}
	return contract.GetPlainCheckLabel(passed)
}

// writeCheckTable lists every thresholded metric with its outcome.
func writeCheckTable(w io.Writer, result schema.CheckResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	failed := make(map[string]bool, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.Name] = true
	}

	labelWidth := getMaxLabelWidth(cfg, 4)
	rows := make([][]string, 0, len(result.Metrics))
	for _, m := range result.Metrics {
		rows = append(rows, []string{
			contract.TruncateLabel(m.Name, labelWidth),
			fmtFloat(m.Median),
			fmtFloat(result.Thresholds[m.Name]),
			strconv.Itoa(len(m.Values())),
			checkLabel(!failed[m.Name], cfg),
		})
	}

	if _, err := fmt.Fprintf(w, "Tests: %s\n", result.Source); err != nil {
		return err
	}
	if err := renderTable(newTable(w, cfg), []string{"Metric", "Median", "Threshold", "Samples", "Result"}, rows); err != nil {
		return err
	}
	if cfg.Output == schema.MarkdownOut {
		return nil
	}

	summary := "All metrics are within their thresholds"
	if !result.Passed {
		summary = fmt.Sprintf("%d of %d metric(s) exceeded their threshold", len(result.Failed), len(result.Metrics))
	}
	_, err := fmt.Fprintf(w, "%s %s (checked in %v)\n", checkLabel(result.Passed, cfg), summary, duration.Round(time.Millisecond))
	return err
}

func writeCheckCSV(w io.Writer, result schema.CheckResult, fmtFloat func(float64) string) error {
	failed := make(map[string]bool, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.Name] = true
	}
	header := []string{"source", "metric", "median", "threshold", "samples", "result"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, m := range result.Metrics {
			row := []string{
				result.Source,
				m.Name,
				fmtFloat(m.Median),
				fmtFloat(result.Thresholds[m.Name]),
				strconv.Itoa(len(m.Values())),
				contract.GetPlainCheckLabel(!failed[m.Name]),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
