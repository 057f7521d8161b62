// Package report renders metadata records for human review: a spreadsheet
// for data stewards, plus JSON and plain-table forms for the CLI.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"parquet-meta/internal/domain"
)

// SheetName is the single worksheet of the report.
const SheetName = "Metadados"

// Header is the report's header row.
var Header = []string{"arquivo", "campo", "tipo", "observações", "descrição"}

var columnWidths = []float64{30, 30, 20, 40, 50}

// Compile-time check.
var _ domain.ReportWriter = (*WorkbookWriter)(nil)

// WorkbookWriter writes records as an .xlsx workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a WorkbookWriter.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{logger: logger}
}

// Write replaces the workbook at path. The file is written next to its
// destination and renamed into place, so a failed write never leaves a
// partial report behind.
func (w *WorkbookWriter) Write(records []domain.Record, path string) error {
	if err := WriteWorkbook(records, path); err != nil {
		return err
	}
	w.logger.Info("report written", "path", path, "records", len(records))
	return nil
}

// WriteWorkbook renders records into a workbook at path, one row per record
// under a styled header row.
func WriteWorkbook(records []domain.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := fillSheet(f, records); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, records []domain.Record) error {
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.File, r.Column, r.Type.String(), r.Observations.String(), r.Description}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	style, err := f.NewStyle(headerStyle())
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}
	return nil
}

func headerStyle() *excelize.Style {
	border := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "top", "right", "bottom"} {
		border = append(border, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
		Border:    border,
	}
}
