package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// CSVSource reads schedule rows from a comma separated file.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV source.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Describe names the source for logs.
func (s *CSVSource) Describe() string {
	return s.path
}

// Read parses the whole file. Rows may have differing lengths.
func (s *CSVSource) Read(ctx context.Context) (*models.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close() //nolint:errcheck

	return readCSV(file, strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path)))
}

func readCSV(r io.Reader, name string) (*models.Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	sheet := &models.Sheet{Name: name}
	if len(records) == 0 {
		return sheet, nil
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	sheet.Header = header
	sheet.Rows = records[1:]
	return sheet, nil
}
