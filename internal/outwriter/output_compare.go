package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/parquet"
	"github.com/huangsam/wpperf/schema"
)

// PrintComparisonResult outputs the comparison, dispatching based on the output format configured.
func PrintComparisonResult(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

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
			return writeComparisonCSV(w, result, fmtFloat, fmtOptional)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return ErrParquetOutputFile
		}
		if err := parquet.WriteMetricDeltasParquet(parquet.ConvertComparison(result), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeComparisonTable writes base and target medians with colored deltas.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	var red, green, yellow func(...any) string
	if cfg.UseColors {
		red = contract.RegressedColor.SprintFunc()
		green = contract.ImprovedColor.SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	} else {
		red = fmt.Sprint
		green = fmt.Sprint
		yellow = fmt.Sprint
	}

	labelWidth := getMaxLabelWidth(cfg, 5)
	rows := make([][]string, 0, len(result.Results))
	regressed, improved := 0, 0
	for _, d := range result.Results {
		var deltaStr, pctStr string
		pct := missingValue
		if d.DeltaPercent != nil {
			pct = fmt.Sprintf("%+.*f%%", cfg.Precision, *d.DeltaPercent)
		}
		switch d.Direction {
		case schema.Regressed:
			regressed++
			deltaStr = red(fmt.Sprintf("+%s ▲", fmtFloat(d.Delta)))
			pctStr = red(pct)
		case schema.Improved:
			improved++
			deltaStr = green(fmt.Sprintf("%s ▼", fmtFloat(d.Delta)))
			pctStr = green(pct)
		case schema.Unchanged:
			deltaStr = yellow(fmtFloat(0))
			pctStr = yellow(pct)
		default:
			deltaStr = missingValue
			pctStr = missingValue
		}

		rows = append(rows, []string{
			contract.TruncateLabel(d.Name, labelWidth),
			fmtFloat(d.BaseMedian),
			fmtFloat(d.TargetMedian),
			deltaStr,
			pctStr,
			string(d.Direction),
		})
	}

	if _, err := fmt.Fprintf(w, "Base: %s\nTarget: %s\n", result.Base, result.Target); err != nil {
		return err
	}
	headers := []string{"Metric", "Base", "Target", "Delta", "Delta %", "Status"}
	if err := renderTable(newTable(w, cfg), headers, rows); err != nil {
		return err
	}
	if cfg.Output == schema.MarkdownOut {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Regressed: %d, Improved: %d, Total: %d\n", regressed, improved, len(result.Results)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Comparison completed in %v with %d workers. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

// writeComparisonCSV writes one row per metric delta.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	header := []string{"metric", "base", "target", "base_median", "target_median", "delta", "delta_percent", "direction", "base_runs", "target_runs"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, d := range result.Results {
			row := []string{
				d.Name,
				result.Base,
				result.Target,
				fmtFloat(d.BaseMedian),
				fmtFloat(d.TargetMedian),
				fmtFloat(d.Delta),
				optionalCSV(d.DeltaPercent, fmtOptional),
				string(d.Direction),
				strconv.Itoa(d.BaseRuns),
				strconv.Itoa(d.TargetRuns),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
