// Package report writes the downloadable artifacts: the standardized CSV a
// user gets back after upload, and the formatted XLSX summary report.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/salesvision/salesvision/analytics"
	"github.com/salesvision/salesvision/ingest"
)

// csvColumns is the canonical column order of a standardized file.
var csvColumns = []string{"product", "price", "quantity", "date", "region"}

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename strips path components and unsafe characters from an
// uploaded filename.
func SafeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload.csv"
	}
	return name
}

// StandardizedName derives the saved name for a standardized file.
func StandardizedName(original string) string {
	return "standardized_" + SafeFilename(original)
}

// WriteCSV writes records as a standardized CSV in canonical column order.
func WriteCSV(w io.Writer, records []ingest.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		date := ""
		if r.HasDate() {
			date = r.Date.Format("2006-01-02")
		}
		row := []string{
			r.Product,
			formatFloat(r.Price),
			formatFloat(r.Quantity),
			date,
			r.Region,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// Summary is everything that goes into the XLSX report.
type Summary struct {
	Title       string
	Metrics     []analytics.Metric
	ByMonth     []analytics.Group
	ByRegion    []analytics.Group
	TopProducts []analytics.Group
}

// WriteXLSX renders a Summary as a multi-sheet workbook: one metrics sheet
// plus one sheet per aggregation.
func WriteXLSX(w io.Writer, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	const metricsSheet = "Metrics"
	if err := f.SetSheetName("Sheet1", metricsSheet); err != nil {
		return err
	}

	_ = f.SetSheetRow(metricsSheet, "A1", &[]any{s.Title})
	_ = f.SetSheetRow(metricsSheet, "A3", &[]any{"Metric", "Value"})
	for i, m := range s.Metrics {
		value := any(m.Value)
		if m.Integer {
			value = int64(m.Value)
		}
		cell := fmt.Sprintf("A%d", i+4)
		_ = f.SetSheetRow(metricsSheet, cell, &[]any{m.Label, value})
	}

	if err := writeGroupSheet(f, "Revenue by month", "Month", s.ByMonth); err != nil {
		return err
	}
	if err := writeGroupSheet(f, "Revenue by region", "Region", s.ByRegion); err != nil {
		return err
	}
	if err := writeGroupSheet(f, "Top products", "Product", s.TopProducts); err != nil {
		return err
	}

	return f.Write(w)
}

func writeGroupSheet(f *excelize.File, sheet, keyLabel string, groups []analytics.Group) error {
	if len(groups) == 0 {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	_ = f.SetSheetRow(sheet, "A1", &[]any{keyLabel, "Revenue", "Quantity", "Records"})
	for i, g := range groups {
		label := g.Label
		if label == "" {
			label = analytics.AllCategories
		}
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(sheet, cell, &[]any{label, g.Revenue, g.Quantity, g.Count})
	}
	return nil
}
