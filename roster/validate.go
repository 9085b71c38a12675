/*
validate.go - The request validation chain

PURPOSE:
  Applies the policy checks to a candidate request, short-circuiting on
  the first failure. Every outcome is a ValidationResult value; a Go
  error here means the store broke, never that a rule fired.

CREATION CHAIN:
  1. past date           date < today rejects; date == today is allowed
  2. restriction window  self-service only; 0 <= days-until-date < window
  3. blackout            off requests on a blackout date reject
  4. duplicate           a non-rejected request in the same off category
                         for the same driver and date rejects
  5. capacity            resolve the cap, then TryReserve(+1)

  Step 5 IS the commitment point: when it succeeds the slot is held, and
  the caller either persists the request or releases the slot. Checking
  capacity and reserving in two steps would reopen the race this engine
  exists to close.

DELETION CHAIN:
  1. past date           past requests are immutable
  2. restriction window  self-service only, same boundary as creation

  The release itself (TryReserve(-1)) always succeeds and is performed by
  the engine after the chain passes.

SEE ALSO:
  - ledger.go: TryReserve semantics
  - engine.go: persistence and slot-release around this chain
*/
package roster

import (
	"context"
	"fmt"

	"github.com/fleetops/roster-engine/calendar"
)

// ValidationResult is the outcome of a validation chain. Reason is set
// only when Accepted is false. For off requests that reached the capacity
// check, Resolution carries the applied rule and NewCount the counter
// value after a successful reservation.
type ValidationResult struct {
	Accepted   bool
	Reason     ErrorKind
	Resolution Resolution
	NewCount   int
}

func rejected(kind ErrorKind) ValidationResult {
	return ValidationResult{Accepted: false, Reason: kind}
}

// Validator runs the policy chains. It holds the ledger (sole capacity
// mutation point) and the request store (duplicate lookups).
type Validator struct {
	Ledger   *CapacityLedger
	Requests RequestStore
}

// ValidateCreate runs the creation chain. On acceptance of an off request
// the team's slot is already reserved; the caller owns it from here.
func (v *Validator) ValidateCreate(ctx context.Context, cand *VacationRequest, s *Settings, today calendar.Date) (ValidationResult, error) {
	if cand.Date.Before(today) {
		return rejected(KindPastDate), nil
	}

	if cand.Origin == OriginSelfService && withinRestrictionWindow(today, cand.Date, s.RestrictionWindow()) {
		return rejected(KindWithinRestrictionWindow), nil
	}

	if cand.Off() && s.IsBlackout(cand.Date) {
		return rejected(KindBlackoutDate), nil
	}

	existing, err := v.Requests.ListByDriverDate(ctx, cand.DriverID, cand.Date)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("duplicate check for driver %s on %s: %w", cand.DriverID, cand.Date, err)
	}
	for i := range existing {
		if existing[i].Status == StatusRejected {
			continue
		}
		if existing[i].SameOffCategory(cand) {
			return rejected(KindDuplicateRequest), nil
		}
	}

	if !cand.Off() {
		// "working" requests do not occupy an off slot.
		return ValidationResult{Accepted: true}, nil
	}

	res := ResolveLimit(cand.Date, cand.Team, s)
	ok, newCount, err := v.Ledger.TryReserve(cand.Team, cand.Date, +1, res.Limit)
	if err != nil {
		return ValidationResult{}, err
	}
	if !ok {
		r := rejected(KindCapacityExceeded)
		r.Resolution = res
		return r, nil
	}
	return ValidationResult{Accepted: true, Resolution: res, NewCount: newCount}, nil
}

// ValidateDelete runs the deletion chain against an existing request.
func (v *Validator) ValidateDelete(existing *VacationRequest, s *Settings, today calendar.Date, origin Origin) ValidationResult {
	if existing.Date.Before(today) {
		return rejected(KindPastDate)
	}
	if origin == OriginSelfService && withinRestrictionWindow(today, existing.Date, s.RestrictionWindow()) {
		return rejected(KindWithinRestrictionWindow)
	}
	return ValidationResult{Accepted: true}
}

// withinRestrictionWindow reports whether date is inside the trailing
// window: at least today, strictly less than window days ahead. A date
// exactly window days out is the first allowed one.
func withinRestrictionWindow(today, date calendar.Date, window int) bool {
	days := calendar.DaysBetween(today, date)
	return days >= 0 && days < window
}
