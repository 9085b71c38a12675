/*
notifier.go - Log-backed notification sink

PURPOSE:
  Emits quota shortfall and capacity rejection events as structured
  log entries. Stands in for an external messaging integration; the
  engine only sees the Notifier interface.

SEE ALSO:
  - roster/store.go: Notifier interface
  - scheduler.go: the scanner that drives periodic shortfall checks
*/
package api

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fleetops/roster-engine/roster"
)

// LogNotifier writes notification events to a logrus logger.
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyQuotaShortfall logs a driver who still owes off days this month.
func (n *LogNotifier) NotifyQuotaShortfall(_ context.Context, stats roster.MonthlyVacationStats) {
	n.log.WithFields(logrus.Fields{
		"driver_id":          stats.DriverID,
		"year":               stats.Year,
		"month":              int(stats.Month),
		"total_off_days":     stats.TotalOffDays,
		"remaining_required": stats.RemainingRequired,
	}).Warn("driver below monthly off-day minimum")
}

// NotifyCapacityExceeded logs a request rejected for lack of capacity.
func (n *LogNotifier) NotifyCapacityExceeded(_ context.Context, req roster.VacationRequest, res roster.Resolution) {
	n.log.WithFields(logrus.Fields{
		"driver_id": req.DriverID,
		"team":      req.Team,
		"date":      req.Date.String(),
		"limit":     res.Limit,
		"rule":      res.Rule,
	}).Info("request rejected at capacity")
}
