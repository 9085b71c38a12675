package roster

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fleetops/roster-engine/calendar"
)

// TeamCapacityReport is the admin view of one team's slots on one date.
// Utilization is Used/Limit; ratios get a decimal, counts stay integers.
type TeamCapacityReport struct {
	Team        Team
	Date        calendar.Date
	Limit       int
	Rule        RuleKind
	PeriodName  string
	Used        int
	Remaining   int
	Utilization decimal.Decimal
	Holiday     bool
	Blackout    bool
}

// TeamCapacity builds the capacity report for (team, date).
func (e *Engine) TeamCapacity(ctx context.Context, team Team, date calendar.Date) (TeamCapacityReport, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return TeamCapacityReport{}, err
	}
	res := ResolveLimit(date, team, s)

	used, err := e.ledger.CurrentCount(team, date)
	if err != nil {
		return TeamCapacityReport{}, err
	}

	remaining := res.Limit - used
	if remaining < 0 {
		remaining = 0
	}

	utilization := decimal.NewFromInt(1)
	if res.Limit > 0 {
		utilization = decimal.NewFromInt(int64(used)).
			Div(decimal.NewFromInt(int64(res.Limit))).
			Round(4)
	} else if used == 0 {
		utilization = decimal.Zero
	}

	return TeamCapacityReport{
		Team:        team,
		Date:        date,
		Limit:       res.Limit,
		Rule:        res.Rule,
		PeriodName:  res.PeriodName,
		Used:        used,
		Remaining:   remaining,
		Utilization: utilization,
		Holiday:     s.IsHoliday(date),
		Blackout:    s.IsBlackout(date),
	}, nil
}
