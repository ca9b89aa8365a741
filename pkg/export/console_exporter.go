package export

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// ConsoleExporter prints the dataset title followed by a bordered text grid.
type ConsoleExporter struct{}

// NewConsoleExporter constructs a console exporter.
func NewConsoleExporter() *ConsoleExporter {
	return &ConsoleExporter{}
}

// Write renders the grid onto w.
func (e *ConsoleExporter) Write(w io.Writer, data Dataset) error {
	if err := data.validate("console"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, data.Title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i := range data.Headers {
			record[i] = cell(row, i)
		}
		table.Append(record)
	}
	table.Render()
	return nil
}
