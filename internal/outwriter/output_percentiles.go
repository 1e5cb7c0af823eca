package outwriter

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// PrintPercentileSummary displays the percentiles and spread of a value list.
func PrintPercentileSummary(summary schema.PercentileSummary, cfg *contract.Config) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, summary)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"statistic", "value"}, func(csvWriter *csv.Writer) error {
				for _, row := range percentileRows(summary, fmtFloat, fmtOptional) {
					if err := csvWriter.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for percentiles")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return renderTable(newTable(w, cfg), []string{"Statistic", "Value"}, percentileRows(summary, fmtFloat, fmtOptional))
		}, "Wrote table")
	}
}

// percentileRows lists count, missing, each percentile, std dev and MAD.
func percentileRows(summary schema.PercentileSummary, fmtFloat func(float64) string, fmtOptional func(*float64) string) [][]string {
	rows := [][]string{
		{"count", strconv.Itoa(summary.Count)},
		{"missing", strconv.Itoa(summary.Missing)},
	}
	for _, pv := range summary.Percentiles {
		rows = append(rows, []string{percentileLabel(pv.Percentile), fmtFloat(pv.Value)})
	}
	rows = append(rows,
		[]string{"std_dev", fmtOptional(summary.StdDev)},
		[]string{"mad", fmtOptional(summary.MAD)},
	)
	return rows
}
