package models

import (
	"fmt"
	"strings"
)

// Required column names of a schedule export, in validation order.
const (
	ColumnTeacher   = "PROFESSOR"
	ColumnWeekday   = "DIASEMANA"
	ColumnStartTime = "HORAINICIAL"
	ColumnEndTime   = "HORAFINAL"
	ColumnSubject   = "DISCIPLINA"
	ColumnClassCode = "CODTURMA"
)

// RequiredColumns lists the headers every schedule source must expose.
var RequiredColumns = []string{
	ColumnTeacher,
	ColumnWeekday,
	ColumnStartTime,
	ColumnEndTime,
	ColumnSubject,
	ColumnClassCode,
}

// Sheet is a raw tabular source: one header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ScheduleRecord is one scheduled class occurrence read from a source row.
type ScheduleRecord struct {
	Row       int
	Teacher   string
	DayCode   string
	Weekday   Weekday
	Start     TimeValue
	End       TimeValue
	Subject   string
	ClassCode string
}

// TimeRange returns the grouping key of the record.
func (r ScheduleRecord) TimeRange() TimeRange {
	return TimeRange{Start: r.Start, End: r.End}
}

// MissingColumnError is returned when a required header is absent.
type MissingColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("column %q not found in schedule header", e.Column)
}

// NormalizeHeader trims a header cell for lookup; names are otherwise matched exactly.
func NormalizeHeader(raw string) string {
	return strings.TrimSpace(raw)
}
