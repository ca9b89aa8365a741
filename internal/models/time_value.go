package models

import (
	"strconv"
	"strings"
)

// TimeValue is an opaque time cell. The raw text is kept verbatim for
// grouping and rendering; a numeric key is derived when the text is a clock
// time or a plain number so that ordering follows time rather than text.
type TimeValue struct {
	Raw     string
	numeric float64
	ordered bool
}

// ParseTimeValue builds a TimeValue from raw cell text.
func ParseTimeValue(raw string) TimeValue {
	raw = strings.TrimSpace(raw)
	tv := TimeValue{Raw: raw}
	if n, ok := clockMinutes(raw); ok {
		tv.numeric, tv.ordered = n, true
		return tv
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		tv.numeric, tv.ordered = f, true
	}
	return tv
}

// String returns the raw cell text.
func (t TimeValue) String() string {
	return t.Raw
}

// Less orders numeric values before non-numeric ones. Numeric values compare
// by their parsed key, the rest by raw text.
func (t TimeValue) Less(other TimeValue) bool {
	if t.ordered != other.ordered {
		return t.ordered
	}
	if t.ordered {
		return t.numeric < other.numeric
	}
	return t.Raw < other.Raw
}

// clockMinutes parses H:MM, HH:MM and HH:MM:SS into minutes since midnight.
func clockMinutes(raw string) (float64, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var values [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		values[i] = n
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, false
	}
	return float64(values[0]*60+values[1]) + float64(values[2])/60, true
}
