/*
settings.go - The immutable settings snapshot

PURPOSE:
  All capacity rules, quota bounds and policy dates live in one Settings
  value. Every resolver and validator call receives a snapshot and treats
  it as read-only; updating settings produces a new snapshot rather than
  mutating shared state, so a settings change never races an in-flight
  validation and never retroactively revalidates approved requests.

VALIDATION:
  Snapshots are validated when loaded (negative limits, min > max,
  notification day out of range all reject with InvalidSettings) instead
  of silently defaulting at resolution time.

  Overlapping active periods are a configuration WARNING, not an error:
  resolution stays first-match-in-declared-order, and OverlappingPeriods
  makes the ambiguity visible to the admin UI.

SEE ALSO:
  - limits.go: consumes the rule maps in priority order
  - factory/settings.go: JSON parsing into this type
*/
package roster

import (
	"fmt"
	"time"

	"github.com/fleetops/roster-engine/calendar"
)

// DefaultRestrictionWindowDays is the trailing window, in days, during
// which self-service creation and deletion are refused.
const DefaultRestrictionWindowDays = 10

// PeriodLimit is a named, possibly year-wrapping date range carrying its
// own override capacity.
type PeriodLimit struct {
	Name   string
	Start  calendar.MonthDay
	End    calendar.MonthDay
	Limit  int
	Active bool
}

// Contains reports whether the date falls inside this period's annual range.
func (p PeriodLimit) Contains(d calendar.Date) bool {
	return calendar.InRange(d, p.Start, p.End)
}

// Settings is an immutable snapshot of all scheduling policy.
type Settings struct {
	MinOffDaysPerMonth    int
	MaxOffDaysPerMonth    int
	NotificationDay       int
	GlobalDefaultLimit    int
	RestrictionWindowDays int

	BlackoutDates map[calendar.Date]bool
	HolidayDates  map[calendar.Date]bool

	// Capacity rule tiers, highest priority first. See limits.go.
	SpecificDateLimits   map[calendar.Date]map[Team]int
	MonthlyWeekdayLimits map[Team]map[time.Month]map[time.Weekday]int
	PeriodLimits         []PeriodLimit
	MonthlyLimits        map[time.Month]int
	WeeklyLimits         map[time.Weekday]int
}

// DefaultSettings returns the snapshot a fresh deployment starts with:
// no rules configured, a permissive global cap, and a quota band wide
// enough to never reject on its own.
func DefaultSettings() *Settings {
	return &Settings{
		MinOffDaysPerMonth:    0,
		MaxOffDaysPerMonth:    31,
		NotificationDay:       25,
		GlobalDefaultLimit:    5,
		RestrictionWindowDays: DefaultRestrictionWindowDays,
		BlackoutDates:         map[calendar.Date]bool{},
		HolidayDates:          map[calendar.Date]bool{},
		SpecificDateLimits:    map[calendar.Date]map[Team]int{},
		MonthlyWeekdayLimits:  map[Team]map[time.Month]map[time.Weekday]int{},
		MonthlyLimits:         map[time.Month]int{},
		WeeklyLimits:          map[time.Weekday]int{},
	}
}

// RestrictionWindow returns the configured window, falling back to the
// default when the snapshot predates the setting.
func (s *Settings) RestrictionWindow() int {
	if s.RestrictionWindowDays > 0 {
		return s.RestrictionWindowDays
	}
	return DefaultRestrictionWindowDays
}

// IsBlackout reports whether the date is blocked for new off requests.
func (s *Settings) IsBlackout(d calendar.Date) bool { return s.BlackoutDates[d] }

// IsHoliday reports whether the date is a listed holiday. Holidays are
// informational only and never block a request on their own.
func (s *Settings) IsHoliday(d calendar.Date) bool { return s.HolidayDates[d] }

// Validate rejects malformed snapshots up front. Every violation is an
// InvalidSettingsError naming the offending field.
func (s *Settings) Validate() error {
	if s.MinOffDaysPerMonth < 0 {
		return &InvalidSettingsError{Field: "min_off_days_per_month", Detail: "must not be negative"}
	}
	if s.MaxOffDaysPerMonth < 0 {
		return &InvalidSettingsError{Field: "max_off_days_per_month", Detail: "must not be negative"}
	}
	if s.MinOffDaysPerMonth > s.MaxOffDaysPerMonth {
		return &InvalidSettingsError{
			Field:  "min_off_days_per_month",
			Detail: fmt.Sprintf("minimum %d exceeds maximum %d", s.MinOffDaysPerMonth, s.MaxOffDaysPerMonth),
		}
	}
	if s.NotificationDay < 1 || s.NotificationDay > 31 {
		return &InvalidSettingsError{Field: "notification_day", Detail: "must be between 1 and 31"}
	}
	if s.GlobalDefaultLimit < 0 {
		return &InvalidSettingsError{Field: "global_default_limit", Detail: "must not be negative"}
	}
	if s.RestrictionWindowDays < 0 {
		return &InvalidSettingsError{Field: "restriction_window_days", Detail: "must not be negative"}
	}

	for date, byTeam := range s.SpecificDateLimits {
		for team, limit := range byTeam {
			if limit < 0 {
				return &InvalidSettingsError{
					Field:  "specific_date_limits",
					Detail: fmt.Sprintf("negative limit for team %q on %s", team, date),
				}
			}
		}
	}
	for team, byMonth := range s.MonthlyWeekdayLimits {
		for month, byWeekday := range byMonth {
			if month < time.January || month > time.December {
				return &InvalidSettingsError{
					Field:  "monthly_weekday_limits",
					Detail: fmt.Sprintf("invalid month %d for team %q", int(month), team),
				}
			}
			for weekday, limit := range byWeekday {
				if weekday < time.Sunday || weekday > time.Saturday {
					return &InvalidSettingsError{
						Field:  "monthly_weekday_limits",
						Detail: fmt.Sprintf("invalid weekday %d for team %q", int(weekday), team),
					}
				}
				if limit < 0 {
					return &InvalidSettingsError{
						Field:  "monthly_weekday_limits",
						Detail: fmt.Sprintf("negative limit for team %q in %s on %s", team, month, weekday),
					}
				}
			}
		}
	}
	for i, p := range s.PeriodLimits {
		if p.Name == "" {
			return &InvalidSettingsError{Field: "period_limits", Detail: fmt.Sprintf("period %d has no name", i)}
		}
		if !p.Start.Valid() || !p.End.Valid() {
			return &InvalidSettingsError{
				Field:  "period_limits",
				Detail: fmt.Sprintf("period %q has an out-of-range start or end", p.Name),
			}
		}
		if p.Limit < 0 {
			return &InvalidSettingsError{Field: "period_limits", Detail: fmt.Sprintf("negative limit in period %q", p.Name)}
		}
	}
	for month, limit := range s.MonthlyLimits {
		if month < time.January || month > time.December {
			return &InvalidSettingsError{Field: "monthly_limits", Detail: fmt.Sprintf("invalid month %d", int(month))}
		}
		if limit < 0 {
			return &InvalidSettingsError{Field: "monthly_limits", Detail: fmt.Sprintf("negative limit for %s", month)}
		}
	}
	for weekday, limit := range s.WeeklyLimits {
		if weekday < time.Sunday || weekday > time.Saturday {
			return &InvalidSettingsError{Field: "weekly_limits", Detail: fmt.Sprintf("invalid weekday %d", int(weekday))}
		}
		if limit < 0 {
			return &InvalidSettingsError{Field: "weekly_limits", Detail: fmt.Sprintf("negative limit for %s", weekday)}
		}
	}
	return nil
}

// PeriodOverlap names two active periods whose annual ranges intersect.
type PeriodOverlap struct {
	First  string
	Second string
}

// OverlappingPeriods returns every pair of active periods with
// intersecting ranges, in declared order. Overlaps are legal; the first
// declared period wins at resolution time. Surfacing them is the admin
// UI's cue to clean the configuration up.
func (s *Settings) OverlappingPeriods() []PeriodOverlap {
	var overlaps []PeriodOverlap
	for i := 0; i < len(s.PeriodLimits); i++ {
		if !s.PeriodLimits[i].Active {
			continue
		}
		for j := i + 1; j < len(s.PeriodLimits); j++ {
			if !s.PeriodLimits[j].Active {
				continue
			}
			if periodsIntersect(s.PeriodLimits[i], s.PeriodLimits[j]) {
				overlaps = append(overlaps, PeriodOverlap{
					First:  s.PeriodLimits[i].Name,
					Second: s.PeriodLimits[j].Name,
				})
			}
		}
	}
	return overlaps
}

// periodsIntersect walks one non-leap year day by day. 366 comparisons per
// pair is nothing at configuration time and sidesteps the wrap case math.
func periodsIntersect(a, b PeriodLimit) bool {
	d := calendar.NewDate(2025, time.January, 1)
	for d.Year == 2025 {
		if a.Contains(d) && b.Contains(d) {
			return true
		}
		d = d.AddDays(1)
	}
	return false
}
