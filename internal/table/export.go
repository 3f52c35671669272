package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Format names an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Exporter serializes a table. Every format writes a header row that starts
// with an empty cell, then one row per table row that starts with the
// 0-based row index.
type Exporter interface {
	Export(w io.Writer, t Table) error
	Extension() string
}

// NewExporter returns the exporter for format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatCSV:
		return &CSVExporter{Comma: ','}, nil
	case FormatXLSX:
		return &XLSXExporter{Sheet: DefaultSheet}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (must be one of: csv, xlsx)", format)
	}
}

// CSVExporter writes comma-delimited text.
type CSVExporter struct {
	Comma rune
}

// Extension returns "csv".
func (e *CSVExporter) Extension() string { return string(FormatCSV) }

// Export writes the header and rows to w.
func (e *CSVExporter) Export(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if e.Comma != 0 {
		cw.Comma = e.Comma
	}

	header := append([]string{""}, t.columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.columns)+1)
	for i, row := range t.rows {
		record[0] = strconv.Itoa(i)
		for j, v := range row {
			record[j+1] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DefaultSheet is the sheet excelize creates in a new workbook.
const DefaultSheet = "Sheet1"

// XLSXExporter writes a single-sheet workbook.
type XLSXExporter struct {
	Sheet string
}

// Extension returns "xlsx".
func (e *XLSXExporter) Extension() string { return string(FormatXLSX) }

// Export writes the header and rows to w. Integer values become numeric
// cells and empty values blank cells.
func (e *XLSXExporter) Export(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]any, 0, len(t.columns)+1)
	header = append(header, "")
	for _, c := range t.columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.rows {
		cells := make([]any, 0, len(row)+1)
		cells = append(cells, i)
		for _, v := range row {
			cells = append(cells, v.Interface())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile exports t to path, replacing any existing file.
func WriteFile(path string, t Table, e Exporter) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := e.Export(out, t); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
