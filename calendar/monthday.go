package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthDay is a recurring month/day position with no year, used for ranges
// that repeat annually (e.g. a New Year period running 12-25 through 01-07).
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses an MM-DD string.
func ParseMonthDay(s string) (MonthDay, error) {
	var month, day int
	if _, err := fmt.Sscanf(s, "%d-%d", &month, &day); err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q (want MM-DD): %w", s, err)
	}
	md := MonthDay{Month: time.Month(month), Day: day}
	if !md.Valid() {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: out of range", s)
	}
	return md, nil
}

// MustParseMonthDay is ParseMonthDay for literals in tests and fixtures.
func MustParseMonthDay(s string) MonthDay {
	md, err := ParseMonthDay(s)
	if err != nil {
		panic(err)
	}
	return md
}

// Valid reports whether the position exists in at least one year. Feb 29 is
// valid; a range touching it simply never matches in non-leap years.
func (md MonthDay) Valid() bool {
	if md.Month < time.January || md.Month > time.December {
		return false
	}
	return md.Day >= 1 && md.Day <= DaysInMonth(2024, md.Month)
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

func (md MonthDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(md.String())
}

func (md *MonthDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonthDay(s)
	if err != nil {
		return err
	}
	*md = parsed
	return nil
}

// InRange reports whether date d falls inside the annual range [start, end].
//
// When start.Month > end.Month the range wraps the year boundary: 12-25
// through 01-07 contains Dec 28 and Jan 3 of every year. Containment is then
//
//	(month == startMonth && day >= startDay) ||
//	(month == endMonth   && day <= endDay)   ||
//	month > startMonth || month < endMonth
//
// A same-month range with start day after end day (e.g. 03-20..03-05) also
// wraps: it covers everything except the gap in the middle of that month.
func InRange(d Date, start, end MonthDay) bool {
	m, day := d.Month, d.Day

	if start.Month == end.Month {
		if start.Day <= end.Day {
			return m == start.Month && day >= start.Day && day <= end.Day
		}
		// Wraps through the rest of the year back into the same month.
		return m != start.Month || day >= start.Day || day <= end.Day
	}

	if start.Month < end.Month {
		switch {
		case m == start.Month:
			return day >= start.Day
		case m == end.Month:
			return day <= end.Day
		default:
			return m > start.Month && m < end.Month
		}
	}

	// Year-wrapping range.
	switch {
	case m == start.Month:
		return day >= start.Day
	case m == end.Month:
		return day <= end.Day
	default:
		return m > start.Month || m < end.Month
	}
}
