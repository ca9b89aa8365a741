package models

import "strings"

// TimeRange identifies one timetable row group. Equality uses both ends;
// ordering uses the start only.
type TimeRange struct {
	Start TimeValue
	End   TimeValue
}

// Cell is one (subject, class code) slot. The zero value is the empty marker.
type Cell struct {
	Subject   string
	ClassCode string
	Filled    bool
}

// NewCell returns a filled cell, even when both strings are empty.
func NewCell(subject, classCode string) Cell {
	return Cell{Subject: subject, ClassCode: classCode, Filled: true}
}

// Empty reports whether the slot holds no class.
func (c Cell) Empty() bool {
	return !c.Filled
}

// Timetable is the pivoted TimeRange x Weekday grid. Ranges keep the order in
// which they first appeared in the input.
type Timetable struct {
	ranges []TimeRange
	cells  map[TimeRange]map[Weekday]Cell
}

// NewTimetable returns an empty timetable.
func NewTimetable() *Timetable {
	return &Timetable{cells: make(map[TimeRange]map[Weekday]Cell)}
}

// Put stores a cell and reports whether it replaced a filled one.
// A range seen for the first time gets all five weekday slots set to empty.
func (t *Timetable) Put(tr TimeRange, day Weekday, cell Cell) (overwrote bool) {
	row, ok := t.cells[tr]
	if !ok {
		row = make(map[Weekday]Cell, len(Weekdays)+1)
		for _, d := range Weekdays {
			row[d] = Cell{}
		}
		t.cells[tr] = row
		t.ranges = append(t.ranges, tr)
	}
	overwrote = row[day].Filled
	row[day] = cell
	return overwrote
}

// Get returns the cell at the given position; unknown positions are empty.
func (t *Timetable) Get(tr TimeRange, day Weekday) Cell {
	return t.cells[tr][day]
}

// Ranges returns the time ranges in first-appearance order.
func (t *Timetable) Ranges() []TimeRange {
	out := make([]TimeRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Len returns the number of distinct time ranges.
func (t *Timetable) Len() int {
	return len(t.ranges)
}

// HeaderTime is the label of the first rendered column.
const HeaderTime = "Time"

// RenderedTable is the flattened artefact consumed by every renderer.
type RenderedTable struct {
	Teacher string
	Header  []string
	Rows    [][]string
}

// Title returns the upper-cased teacher name shown above the grid.
func (r RenderedTable) Title() string {
	return strings.ToUpper(r.Teacher)
}
