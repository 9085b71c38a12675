/*
Package factory converts JSON settings documents into roster.Settings.

PURPOSE:
  Capacity rules are configuration, not code: dispatch admins adjust
  them through the UI and the documents land in the settings store as
  JSON. The factory parses and validates a document up front, rejecting
  malformed input with InvalidSettings instead of letting a bad key
  silently default at resolution time.

JSON SCHEMA:
  {
    "min_off_days_per_month": 9,
    "max_off_days_per_month": 12,
    "notification_day": 20,
    "global_default_limit": 5,
    "restriction_window_days": 10,
    "blackout_dates": ["2026-01-01"],
    "holiday_dates": ["2026-01-01", "2026-02-11"],
    "specific_date_limits": {"2025-09-09": {"B": 1}},
    "monthly_weekday_limits": {"B": {"9": {"tuesday": 2}}},
    "period_limits": [
      {"name": "NewYear", "start_date": "12-25", "end_date": "01-07",
       "limit": 2, "is_active": true}
    ],
    "monthly_limits": {"1": 4},
    "weekly_limits": {"sunday": 3}
  }

  Months are numeric strings "1".."12"; weekdays are lowercase English
  names. Dates are YYYY-MM-DD, recurring positions MM-DD.

SEE ALSO:
  - roster/settings.go: the target type and its Validate
  - api/handlers.go: GET/PUT settings round-trips through this package
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the wire representation of a settings snapshot.
type SettingsJSON struct {
	MinOffDaysPerMonth    int                                   `json:"min_off_days_per_month"`
	MaxOffDaysPerMonth    int                                   `json:"max_off_days_per_month"`
	NotificationDay       int                                   `json:"notification_day"`
	GlobalDefaultLimit    int                                   `json:"global_default_limit"`
	RestrictionWindowDays int                                   `json:"restriction_window_days,omitempty"`
	BlackoutDates         []string                              `json:"blackout_dates,omitempty"`
	HolidayDates          []string                              `json:"holiday_dates,omitempty"`
	SpecificDateLimits    map[string]map[string]int             `json:"specific_date_limits,omitempty"`
	MonthlyWeekdayLimits  map[string]map[string]map[string]int  `json:"monthly_weekday_limits,omitempty"`
	PeriodLimits          []PeriodLimitJSON                     `json:"period_limits,omitempty"`
	MonthlyLimits         map[string]int                        `json:"monthly_limits,omitempty"`
	WeeklyLimits          map[string]int                        `json:"weekly_limits,omitempty"`
}

// PeriodLimitJSON is the wire representation of a named period rule.
type PeriodLimitJSON struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Limit     int    `json:"limit"`
	IsActive  bool   `json:"is_active"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSettings parses and validates a JSON settings document.
func ParseSettings(jsonStr string) (*roster.Settings, error) {
	var sj SettingsJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, &roster.InvalidSettingsError{Field: "json", Detail: err.Error()}
	}
	return FromJSON(sj)
}

// FromJSON converts the wire representation into a validated snapshot.
func FromJSON(sj SettingsJSON) (*roster.Settings, error) {
	s := &roster.Settings{
		MinOffDaysPerMonth:    sj.MinOffDaysPerMonth,
		MaxOffDaysPerMonth:    sj.MaxOffDaysPerMonth,
		NotificationDay:       sj.NotificationDay,
		GlobalDefaultLimit:    sj.GlobalDefaultLimit,
		RestrictionWindowDays: sj.RestrictionWindowDays,
		BlackoutDates:         make(map[calendar.Date]bool),
		HolidayDates:          make(map[calendar.Date]bool),
		SpecificDateLimits:    make(map[calendar.Date]map[roster.Team]int),
		MonthlyWeekdayLimits:  make(map[roster.Team]map[time.Month]map[time.Weekday]int),
		MonthlyLimits:         make(map[time.Month]int),
		WeeklyLimits:          make(map[time.Weekday]int),
	}

	for _, raw := range sj.BlackoutDates {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "blackout_dates", Detail: err.Error()}
		}
		s.BlackoutDates[d] = true
	}
	for _, raw := range sj.HolidayDates {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "holiday_dates", Detail: err.Error()}
		}
		s.HolidayDates[d] = true
	}

	for rawDate, byTeam := range sj.SpecificDateLimits {
		d, err := calendar.ParseDate(rawDate)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "specific_date_limits", Detail: err.Error()}
		}
		limits := make(map[roster.Team]int, len(byTeam))
		for team, limit := range byTeam {
			limits[roster.Team(team)] = limit
		}
		s.SpecificDateLimits[d] = limits
	}

	for team, byMonth := range sj.MonthlyWeekdayLimits {
		months := make(map[time.Month]map[time.Weekday]int, len(byMonth))
		for rawMonth, byWeekday := range byMonth {
			month, err := parseMonth(rawMonth)
			if err != nil {
				return nil, &roster.InvalidSettingsError{Field: "monthly_weekday_limits", Detail: err.Error()}
			}
			weekdays := make(map[time.Weekday]int, len(byWeekday))
			for rawWeekday, limit := range byWeekday {
				weekday, err := parseWeekday(rawWeekday)
				if err != nil {
					return nil, &roster.InvalidSettingsError{Field: "monthly_weekday_limits", Detail: err.Error()}
				}
				weekdays[weekday] = limit
			}
			months[month] = weekdays
		}
		s.MonthlyWeekdayLimits[roster.Team(team)] = months
	}

	for _, pj := range sj.PeriodLimits {
		start, err := calendar.ParseMonthDay(pj.StartDate)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "period_limits", Detail: err.Error()}
		}
		end, err := calendar.ParseMonthDay(pj.EndDate)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "period_limits", Detail: err.Error()}
		}
		s.PeriodLimits = append(s.PeriodLimits, roster.PeriodLimit{
			Name:   pj.Name,
			Start:  start,
			End:    end,
			Limit:  pj.Limit,
			Active: pj.IsActive,
		})
	}

	for rawMonth, limit := range sj.MonthlyLimits {
		month, err := parseMonth(rawMonth)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "monthly_limits", Detail: err.Error()}
		}
		s.MonthlyLimits[month] = limit
	}
	for rawWeekday, limit := range sj.WeeklyLimits {
		weekday, err := parseWeekday(rawWeekday)
		if err != nil {
			return nil, &roster.InvalidSettingsError{Field: "weekly_limits", Detail: err.Error()}
		}
		s.WeeklyLimits[weekday] = limit
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON converts a snapshot back to its wire representation. Map-derived
// slices are sorted so the output is stable.
func ToJSON(s *roster.Settings) SettingsJSON {
	sj := SettingsJSON{
		MinOffDaysPerMonth:    s.MinOffDaysPerMonth,
		MaxOffDaysPerMonth:    s.MaxOffDaysPerMonth,
		NotificationDay:       s.NotificationDay,
		GlobalDefaultLimit:    s.GlobalDefaultLimit,
		RestrictionWindowDays: s.RestrictionWindowDays,
	}

	for d := range s.BlackoutDates {
		sj.BlackoutDates = append(sj.BlackoutDates, d.String())
	}
	sort.Strings(sj.BlackoutDates)
	for d := range s.HolidayDates {
		sj.HolidayDates = append(sj.HolidayDates, d.String())
	}
	sort.Strings(sj.HolidayDates)

	if len(s.SpecificDateLimits) > 0 {
		sj.SpecificDateLimits = make(map[string]map[string]int, len(s.SpecificDateLimits))
		for d, byTeam := range s.SpecificDateLimits {
			limits := make(map[string]int, len(byTeam))
			for team, limit := range byTeam {
				limits[string(team)] = limit
			}
			sj.SpecificDateLimits[d.String()] = limits
		}
	}

	if len(s.MonthlyWeekdayLimits) > 0 {
		sj.MonthlyWeekdayLimits = make(map[string]map[string]map[string]int, len(s.MonthlyWeekdayLimits))
		for team, byMonth := range s.MonthlyWeekdayLimits {
			months := make(map[string]map[string]int, len(byMonth))
			for month, byWeekday := range byMonth {
				weekdays := make(map[string]int, len(byWeekday))
				for weekday, limit := range byWeekday {
					weekdays[strings.ToLower(weekday.String())] = limit
				}
				months[strconv.Itoa(int(month))] = weekdays
			}
			sj.MonthlyWeekdayLimits[string(team)] = months
		}
	}

	for _, p := range s.PeriodLimits {
		sj.PeriodLimits = append(sj.PeriodLimits, PeriodLimitJSON{
			Name:      p.Name,
			StartDate: p.Start.String(),
			EndDate:   p.End.String(),
			Limit:     p.Limit,
			IsActive:  p.Active,
		})
	}

	if len(s.MonthlyLimits) > 0 {
		sj.MonthlyLimits = make(map[string]int, len(s.MonthlyLimits))
		for month, limit := range s.MonthlyLimits {
			sj.MonthlyLimits[strconv.Itoa(int(month))] = limit
		}
	}
	if len(s.WeeklyLimits) > 0 {
		sj.WeeklyLimits = make(map[string]int, len(s.WeeklyLimits))
		for weekday, limit := range s.WeeklyLimits {
			sj.WeeklyLimits[strings.ToLower(weekday.String())] = limit
		}
	}
	return sj
}

// =============================================================================
// KEY PARSING
// =============================================================================

func parseMonth(s string) (time.Month, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("invalid month key %q (want \"1\"..\"12\")", s)
	}
	return time.Month(n), nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid weekday key %q", s)
}
