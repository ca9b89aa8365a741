package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName names the single sheet of a rendered workbook.
const DefaultSheetName = "Schedule"

// Sheet layout: title in A1, a blank row 2, headers on row 3, data from row 4.
const (
	titleRow     = 1
	headerRow    = 3
	firstDataRow = 4
)

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheetName string
}

// NewXLSXExporter constructs a workbook exporter. An empty name falls back to DefaultSheetName.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &XLSXExporter{sheetName: sheetName}
}

// Render produces the workbook bytes with auto-sized columns. Widths are
// capped at the widest column a workbook accepts.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	sheet := e.sheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if data.Title != "" {
		if err := f.SetCellStr(sheet, cellName(1, titleRow), data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
	}
	if err := writeRow(f, sheet, headerRow, data.Headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := writeRow(f, sheet, firstDataRow+i, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for i, width := range ColumnWidths(data) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if width > excelize.MaxColumnWidth {
			width = excelize.MaxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return nil, fmt.Errorf("size column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRow writes non-empty values only so blank slots stay blank cells.
func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, value := range values {
		if value == "" {
			continue
		}
		if err := f.SetCellStr(sheet, cellName(i+1, row), value); err != nil {
			return err
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
