/*
Package calendar provides timezone-free calendar date values.

PURPOSE:
  The scheduling engine reasons about calendar days, never instants. A
  request is "for September 9th", full stop. Representing that as a
  time.Time invites an entire class of off-by-one-day bugs the moment a
  value crosses a timezone conversion or a DST boundary.

  Date is a plain (year, month, day) triple. Construction, comparison and
  map-key use never touch a timezone. The stdlib time package is used only
  internally, for weekday computation and day arithmetic, always pinned to
  UTC so the calendar day can never shift.

KEY TYPES:
  - Date:     a single calendar day (comparable, usable as a map key)
  - MonthDay: a recurring month/day position, for year-wrapping ranges

SEE ALSO:
  - monthday.go: MonthDay and year-wrap containment
  - roster/limits.go: rule resolution keyed by Date properties
*/
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day with no time-of-day and no timezone.
// The zero value is not a valid date; use IsZero to detect it.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components. Components are normalized the
// way time.Date normalizes them (e.g. April 31 becomes May 1).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current date in local time. This is the single place
// where wall-clock time enters the package.
func Today() Date {
	now := time.Now()
	return Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison. Dates compare as (year, month, day) tuples; no time.Time
// round-trip is involved.

func (d Date) Equal(other Date) bool { return d == other }

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool        { return other.Before(d) }
func (d Date) BeforeOrEqual(o Date) bool    { return !o.Before(d) }
func (d Date) AfterOrEqual(o Date) bool     { return !d.Before(o) }
func (d Date) IsZero() bool                 { return d == Date{} }

// Weekday returns the day of the week. The UTC pin is deliberate: with a
// fixed zone the computed weekday belongs to this calendar day exactly.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// AddMonths returns the date n months later, normalized per time.AddDate.
func (d Date) AddMonths(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// InMonth reports whether the date falls in the given year/month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

// MonthDay returns the recurring month/day position of this date.
func (d Date) MonthDay() MonthDay {
	return MonthDay{Month: d.Month, Day: d.Day}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysBetween returns to - from in whole days. Negative when to is earlier.
func DaysBetween(from, to Date) int {
	a := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year, to.Month, to.Day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// StartOfMonth returns the first day of the given month.
func StartOfMonth(year int, month time.Month) Date {
	return Date{Year: year, Month: month, Day: 1}
}

// EndOfMonth returns the last day of the given month.
func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysInMonth returns how many days the given month has.
func DaysInMonth(year int, month time.Month) int {
	return EndOfMonth(year, month).Day
}

// JSON encoding as "YYYY-MM-DD" strings, so dates survive settings
// round-trips without picking up a time component.

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
