/*
limits.go - Capacity rule resolution

PURPOSE:
  Answers "how many drivers of this team may be off on this date?" by
  walking a fixed rule hierarchy, most specific first:

    1. specific date         SpecificDateLimits[date][team]
    2. monthly weekday       MonthlyWeekdayLimits[team][month][weekday]
    3. named period          first active PeriodLimit containing the date
    4. monthly               MonthlyLimits[month]
    5. weekday (global)      WeeklyLimits[weekday]
    6. global default        always defined, terminal fallback

  Resolution is a pure function of (date, team, settings): no state, no
  side effects, identical output for identical input. When several active
  periods contain the date, the first in declared order wins; overlap
  detection lives in settings.go, not here.

SEE ALSO:
  - settings.go: the rule maps and overlap warnings
  - validate.go: feeds the resolved limit into the capacity check
*/
package roster

import "github.com/fleetops/roster-engine/calendar"

// RuleKind names which tier of the hierarchy produced a limit.
type RuleKind string

const (
	RuleSpecificDate   RuleKind = "specific_date"
	RuleMonthlyWeekday RuleKind = "monthly_weekday"
	RulePeriod         RuleKind = "period"
	RuleMonthly        RuleKind = "monthly"
	RuleWeekday        RuleKind = "weekday"
	RuleGlobalDefault  RuleKind = "global_default"
)

// Resolution is the outcome of a limit lookup. PeriodName is set only when
// Rule is RulePeriod.
type Resolution struct {
	Limit      int
	Rule       RuleKind
	PeriodName string
}

// ResolveLimit returns the applicable off-day cap for the team on the
// date, and which rule produced it.
func ResolveLimit(d calendar.Date, team Team, s *Settings) Resolution {
	if byTeam, ok := s.SpecificDateLimits[d]; ok {
		if limit, ok := byTeam[team]; ok {
			return Resolution{Limit: limit, Rule: RuleSpecificDate}
		}
	}

	if byMonth, ok := s.MonthlyWeekdayLimits[team]; ok {
		if byWeekday, ok := byMonth[d.Month]; ok {
			if limit, ok := byWeekday[d.Weekday()]; ok {
				return Resolution{Limit: limit, Rule: RuleMonthlyWeekday}
			}
		}
	}

	for _, p := range s.PeriodLimits {
		if p.Active && p.Contains(d) {
			return Resolution{Limit: p.Limit, Rule: RulePeriod, PeriodName: p.Name}
		}
	}

	if limit, ok := s.MonthlyLimits[d.Month]; ok {
		return Resolution{Limit: limit, Rule: RuleMonthly}
	}

	if limit, ok := s.WeeklyLimits[d.Weekday()]; ok {
		return Resolution{Limit: limit, Rule: RuleWeekday}
	}

	return Resolution{Limit: s.GlobalDefaultLimit, Rule: RuleGlobalDefault}
}
