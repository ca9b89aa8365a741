package repository

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// XLSXSource reads schedule rows from a workbook.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource creates a workbook source. An empty sheet selects the first sheet.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

// Describe names the source for logs.
func (s *XLSXSource) Describe() string {
	if s.sheet == "" {
		return s.path
	}
	return fmt.Sprintf("%s[%s]", s.path, s.sheet)
}

// Read returns the header row and every following row of the sheet.
func (s *XLSXSource) Read(ctx context.Context) (*models.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	name := s.sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.path)
		}
		name = sheets[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}

	sheet := &models.Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Header = rows[0]
	sheet.Rows = rows[1:]
	return sheet, nil
}
