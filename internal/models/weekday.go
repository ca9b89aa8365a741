package models

import (
	"strconv"
	"strings"
)

// Weekday is a rendered timetable column.
type Weekday int

// WeekdayInvalid collects records whose day code is outside 2..6. It is never rendered.
const (
	WeekdayInvalid Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays are the rendered columns, left to right.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = map[Weekday]string{
	WeekdayInvalid: "INVALID_DAY",
	Monday:         "MONDAY",
	Tuesday:        "TUESDAY",
	Wednesday:      "WEDNESDAY",
	Thursday:       "THURSDAY",
	Friday:         "FRIDAY",
}

// String returns the column label.
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return weekdayNames[WeekdayInvalid]
}

// Valid reports whether the day is one of the five rendered columns.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// WeekdayFromCode maps the export's day code (2 = Monday ... 6 = Friday).
// Every other code yields WeekdayInvalid.
func WeekdayFromCode(code int) Weekday {
	if code < 2 || code > 6 {
		return WeekdayInvalid
	}
	return Weekday(code - 1)
}

// ParseWeekday converts a raw cell into a Weekday. Integral numeric text such as
// "2" or "2.0" is accepted; anything else is WeekdayInvalid.
func ParseWeekday(raw string) Weekday {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WeekdayInvalid
	}
	if code, err := strconv.Atoi(raw); err == nil {
		return WeekdayFromCode(code)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return WeekdayInvalid
	}
	return WeekdayFromCode(int(f))
}
