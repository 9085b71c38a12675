package roster

import (
	"time"
)

// ComputeMonthlyStats projects a driver's quota position for one month
// from the set of approved requests. Pure function of its inputs:
// recomputing on every read is O(requests in month) and always consistent
// with the request store, so nothing here is cached or mutated.
//
// Requests outside the month, non-approved requests, requests for other
// drivers and "working" requests are all ignored.
func ComputeMonthlyStats(driverID DriverID, year int, month time.Month, approved []VacationRequest, s *Settings) MonthlyVacationStats {
	total := 0
	for i := range approved {
		r := &approved[i]
		if r.DriverID != driverID || r.Status != StatusApproved || !r.Off() {
			continue
		}
		if r.Date.InMonth(year, month) {
			total++
		}
	}

	remaining := s.MinOffDaysPerMonth - total
	if remaining < 0 {
		remaining = 0
	}

	return MonthlyVacationStats{
		DriverID:          driverID,
		Year:              year,
		Month:             month,
		TotalOffDays:      total,
		RequiredMinimum:   s.MinOffDaysPerMonth,
		RemainingRequired: remaining,
		MaxAllowed:        s.MaxOffDaysPerMonth,
		OverQuota:         total > s.MaxOffDaysPerMonth,
	}
}
