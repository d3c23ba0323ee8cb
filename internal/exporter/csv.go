// Package exporter writes the pipeline's structured results to CSV and JSON
// files for the export collaborator. Layout and document generation stay
// outside the core; this package only serializes plain structured data.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
	"fairsquare/internal/errors"
	"fairsquare/internal/forecast"
	"fairsquare/internal/report"
)

// Writer exports structured results under a base directory.
type Writer struct {
	baseDir string
	logger  *slog.Logger
}

// NewWriter creates an exporter rooted at baseDir.
func NewWriter(baseDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{baseDir: baseDir, logger: logger}
}

// writeCSV writes a header plus rows to a CSV file under the base directory.
func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write CSV header", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return errors.NewStorageError("failed to write CSV row", err)
		}
	}

	w.logger.Info("wrote CSV export",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return nil
}

// WriteTable exports the canonical table.
func (w *Writer) WriteTable(name string, table *dataset.CanonicalTable) error {
	raw := table.ToTable()
	return w.writeCSV(name, raw.Columns, raw.Rows)
}

// WriteSeries exports a daily or weekly series.
func (w *Writer) WriteSeries(name string, series analytics.DailySeries) error {
	rows := make([][]string, 0, len(series))
	for _, p := range series {
		rows = append(rows, []string{p.Date.Format("2006-01-02"), formatFloat(p.TotalSales)})
	}
	return w.writeCSV(name, []string{"date", "total_sales"}, rows)
}

// WriteForecast exports a forecast result.
func (w *Writer) WriteForecast(name string, result *forecast.Result) error {
	rows := make([][]string, 0, len(result.Points))
	for _, p := range result.Points {
		rows = append(rows, []string{
			p.Date.Format("2006-01-02"),
			formatFloat(p.Point),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
		})
	}
	return w.writeCSV(name, []string{"date", "point_estimate", "lower_bound", "upper_bound"}, rows)
}

// WriteSummaryJSON exports summary statistics with generation metadata.
func (w *Writer) WriteSummaryJSON(name string, summary *report.SummaryStats) error {
	path := filepath.Join(w.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}

	payload := map[string]interface{}{
		"summary":      summary,
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "summary_stats_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return errors.NewStorageError("failed to encode summary JSON", err)
	}

	w.logger.Info("wrote summary export", slog.String("path", path))
	return nil
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
