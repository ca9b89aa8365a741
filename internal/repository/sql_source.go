package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// SQLSource reads schedule rows from a query result.
type SQLSource struct {
	db    *sqlx.DB
	query string
	args  []interface{}
}

// NewSQLSource creates a query-backed source.
func NewSQLSource(db *sqlx.DB, query string, args ...interface{}) *SQLSource {
	return &SQLSource{db: db, query: query, args: args}
}

// Describe names the source for logs.
func (s *SQLSource) Describe() string {
	return "sql"
}

// Read runs the query and returns its columns as the header. Column names
// are upper-cased because PostgreSQL folds unquoted identifiers to lower case.
func (s *SQLSource) Read(ctx context.Context) (*models.Sheet, error) {
	rows, err := s.db.QueryxContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, fmt.Errorf("query schedule rows: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	header := make([]string, len(columns))
	for i, column := range columns {
		header[i] = strings.ToUpper(column)
	}

	sheet := &models.Sheet{Name: "query", Header: header}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		row := make([]string, len(values))
		for i, value := range values {
			row[i] = formatSQLValue(value)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule rows: %w", err)
	}
	return sheet, nil
}

func formatSQLValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Year() <= 1 {
			return v.Format("15:04")
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
