/*
Package roster implements the off-day scheduling core for a driver fleet.

PURPOSE:
  Drivers request days off (or night shifts). Each team has a daily cap on
  how many of its drivers may be off, resolved from a layered rule
  hierarchy, and each driver has a monthly minimum/maximum off-day quota.
  This package resolves the applicable cap for any date, validates
  candidate requests against blackout/restriction/duplicate/capacity
  policy, and keeps the per-(team, date) approved-off counter that makes
  the cap invariant hold under concurrent submission.

KEY CONCEPTS IN THIS FILE (types.go):
  - Team/DriverID: type-safe identifiers
  - VacationRequest: a single-day off/night-shift/working request
  - MonthlyVacationStats: derived per-driver monthly quota position

DESIGN PRINCIPLES:
  1. Settings are an immutable snapshot per evaluation, never shared state
  2. Dates are calendar values (calendar.Date), never instants
  3. All capacity mutation goes through CapacityLedger, nothing else
  4. Business rejections are result values, not errors

SEE ALSO:
  - settings.go:  Settings snapshot and load-time validation
  - limits.go:    capacity rule resolution
  - ledger.go:    the concurrency-safe capacity counter
  - validate.go:  the request validation chain
  - engine.go:    the façade the API layer calls
*/
package roster

import (
	"time"

	"github.com/fleetops/roster-engine/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Team identifies an organizational grouping of drivers (a depot or
// contractor pool). Daily off caps are enforced per team, independently.
type Team string

// DriverID identifies a driver.
type DriverID string

// Driver is the directory record used to stamp team and external-driver
// information onto new requests. The directory itself is a collaborator.
type Driver struct {
	ID       DriverID
	Name     string
	Team     Team
	External bool
}

// =============================================================================
// VACATION REQUEST
// =============================================================================

// WorkStatus is what the driver requests to do on the date.
type WorkStatus string

const (
	WorkStatusDayOff     WorkStatus = "day_off"
	WorkStatusNightShift WorkStatus = "night_shift"
	WorkStatusWorking    WorkStatus = "working"
)

// Off reports whether the status occupies one of the team's daily off
// slots. Both day-off and night-shift requests count against the cap.
func (ws WorkStatus) Off() bool {
	return ws == WorkStatusDayOff || ws == WorkStatusNightShift
}

// Valid reports whether ws is one of the known statuses.
func (ws WorkStatus) Valid() bool {
	return ws == WorkStatusDayOff || ws == WorkStatusNightShift || ws == WorkStatusWorking
}

// RequestStatus is the lifecycle state of a request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Origin records which path created the request. Admin-registered requests
// bypass the self-service restriction window.
type Origin string

const (
	OriginSelfService Origin = "self_service"
	OriginAdmin       Origin = "admin"
)

// VacationRequest is a single-day request. Time of day is irrelevant; the
// date is a pure calendar value.
type VacationRequest struct {
	ID             string
	DriverID       DriverID
	Team           Team
	Date           calendar.Date
	WorkStatus     WorkStatus
	Status         RequestStatus
	Origin         Origin
	ExternalDriver bool
	RequestedAt    time.Time
}

// Off reports whether this request occupies an off slot.
func (r *VacationRequest) Off() bool { return r.WorkStatus.Off() }

// SameOffCategory reports whether two requests fall into the same
// duplicate-check bucket: identical statuses always collide, and any two
// off-type statuses collide (a driver cannot be off twice on one day).
func (r *VacationRequest) SameOffCategory(other *VacationRequest) bool {
	if r.WorkStatus == other.WorkStatus {
		return true
	}
	return r.Off() && other.Off()
}

// =============================================================================
// MONTHLY STATS - Derived quota position, never stored as source of truth
// =============================================================================

// MonthlyVacationStats is a pure projection of a driver's approved off
// requests for one month against the quota settings.
type MonthlyVacationStats struct {
	DriverID          DriverID
	Year              int
	Month             time.Month
	TotalOffDays      int
	RequiredMinimum   int
	RemainingRequired int
	MaxAllowed        int
	OverQuota         bool
}
