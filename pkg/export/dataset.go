package export

import (
	"fmt"
	"unicode/utf8"
)

// Dataset defines tabular export content. Rows are positional and aligned
// with Headers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// ColumnMargin is added to the longest cell of a column to get its width.
const ColumnMargin = 2

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	return nil
}

// cell returns the value at column i of row, or "" for short rows.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ColumnWidths returns, per column, the rune length of the longest non-empty
// value (title, headers and rows) plus ColumnMargin. The title only counts
// towards the first column, where it is written.
func ColumnWidths(d Dataset) []int {
	columns := len(d.Headers)
	for _, row := range d.Rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 && d.Title != "" {
		columns = 1
	}

	longest := make([]int, columns)
	observe := func(i int, value string) {
		if value == "" {
			return
		}
		if n := utf8.RuneCountInString(value); n > longest[i] {
			longest[i] = n
		}
	}
	if columns > 0 {
		observe(0, d.Title)
	}
	for i, header := range d.Headers {
		observe(i, header)
	}
	for _, row := range d.Rows {
		for i, value := range row {
			observe(i, value)
		}
	}

	widths := make([]int, columns)
	for i, n := range longest {
		widths[i] = n + ColumnMargin
	}
	return widths
}
