/*
engine.go - The façade the API layer calls

PURPOSE:
  Wires the resolver, validator, ledger and quota projection to the
  collaborator interfaces and exposes the five operations of the core:

    ResolveLimit     which cap applies to (date, team), and why
    Validate         preflight a candidate without keeping the slot
    Commit           create: validate, keep the slot, persist approved
    Withdraw         delete: re-check the window, release the slot
    GetMonthlyStats  a driver's quota position for a month

VALIDATE vs COMMIT:
  The capacity check reserves atomically (see validate.go), so Commit
  validates and persists in one motion and the reservation survives.
  Validate runs the identical chain but releases the slot it won before
  returning - a preflight never leaks capacity. Only Commit persists.

NOTIFICATIONS:
  Capacity rejections and quota shortfalls are handed to the Notifier on
  a separate goroutine, fire-and-forget. The engine never waits on
  delivery and never fails an operation because a notification did.

SEE ALSO:
  - validate.go: the chains
  - ledger.go: reservation semantics and cold-start seeding
  - quota.go: the stats projection
*/
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetops/roster-engine/calendar"
)

// Engine is the scheduling core behind the API layer.
type Engine struct {
	Requests RequestStore
	Settings SettingsStore
	Drivers  DriverDirectory
	Notifier Notifier

	// Now supplies "today" and is swappable in tests. Defaults to
	// calendar.Today.
	Now func() calendar.Date

	ledger    *CapacityLedger
	validator *Validator
}

// NewEngine builds an engine. The capacity ledger seeds its counters from
// the request store on first touch of each (team, date) key.
func NewEngine(requests RequestStore, settings SettingsStore, drivers DriverDirectory, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	e := &Engine{
		Requests: requests,
		Settings: settings,
		Drivers:  drivers,
		Notifier: notifier,
		Now:      calendar.Today,
	}
	e.ledger = NewCapacityLedger(func(team Team, date calendar.Date) (int, error) {
		approved, err := requests.ListApproved(context.Background(), team, date)
		if err != nil {
			return 0, err
		}
		return len(approved), nil
	})
	e.validator = &Validator{Ledger: e.ledger, Requests: requests}
	return e
}

// Ledger exposes the capacity ledger for reports and tests.
func (e *Engine) Ledger() *CapacityLedger { return e.ledger }

// ResolveLimit returns the applicable cap and rule for (date, team).
func (e *Engine) ResolveLimit(ctx context.Context, date calendar.Date, team Team) (Resolution, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return ResolveLimit(date, team, s), nil
}

// Validate preflights a candidate request. The full chain runs, including
// the atomic capacity reservation, but an accepted off request's slot is
// released before returning.
func (e *Engine) Validate(ctx context.Context, cand VacationRequest) (ValidationResult, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	if err := e.stamp(ctx, &cand); err != nil {
		return ValidationResult{}, err
	}

	result, err := e.validator.ValidateCreate(ctx, &cand, s, e.Now())
	if err != nil {
		return ValidationResult{}, err
	}
	if result.Accepted && cand.Off() {
		// Reserve and release are two ledger operations: a commit racing
		// in between sees the slot briefly held and may reject. Preflight
		// results are advisory; rejected callers resubmit.
		if _, _, err := e.ledger.TryReserve(cand.Team, cand.Date, -1, result.Resolution.Limit); err != nil {
			return ValidationResult{}, err
		}
	}
	e.notifyRejection(cand, result)
	return result, nil
}

// Commit creates a request: validates it, and on acceptance persists it
// as approved with the reserved slot kept. The returned request carries
// the assigned ID.
func (e *Engine) Commit(ctx context.Context, cand VacationRequest) (ValidationResult, *VacationRequest, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return ValidationResult{}, nil, err
	}
	if err := e.stamp(ctx, &cand); err != nil {
		return ValidationResult{}, nil, err
	}

	result, err := e.validator.ValidateCreate(ctx, &cand, s, e.Now())
	if err != nil {
		return ValidationResult{}, nil, err
	}
	if !result.Accepted {
		e.notifyRejection(cand, result)
		return result, nil, nil
	}

	if cand.ID == "" {
		cand.ID = fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	cand.Status = StatusApproved
	cand.RequestedAt = time.Now()

	if err := e.Requests.Persist(ctx, &cand); err != nil {
		// Hand the slot back; the request never made it to the store.
		if cand.Off() {
			e.ledger.TryReserve(cand.Team, cand.Date, -1, result.Resolution.Limit)
		}
		return ValidationResult{}, nil, fmt.Errorf("persisting request: %w", err)
	}
	return result, &cand, nil
}

// Withdraw deletes a request, releasing its slot. origin decides whether
// the restriction window applies.
func (e *Engine) Withdraw(ctx context.Context, requestID string, origin Origin) (ValidationResult, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	req, err := e.Requests.Get(ctx, requestID)
	if err != nil {
		return ValidationResult{}, err
	}

	result := e.validator.ValidateDelete(req, s, e.Now(), origin)
	if !result.Accepted {
		return result, nil
	}

	if req.Off() && req.Status == StatusApproved {
		if _, _, err := e.ledger.TryReserve(req.Team, req.Date, -1, 0); err != nil {
			return ValidationResult{}, err
		}
	}
	if err := e.Requests.Remove(ctx, requestID); err != nil {
		return ValidationResult{}, err
	}
	return result, nil
}

// GetMonthlyStats projects a driver's quota position for a month. When
// the driver still owes required off days at or after the notification
// day, a shortfall event fires.
func (e *Engine) GetMonthlyStats(ctx context.Context, driverID DriverID, year int, month time.Month) (MonthlyVacationStats, error) {
	s, err := e.Settings.LoadSettings(ctx)
	if err != nil {
		return MonthlyVacationStats{}, err
	}
	requests, err := e.Requests.ListByDriverMonth(ctx, driverID, year, month)
	if err != nil {
		return MonthlyVacationStats{}, err
	}

	stats := ComputeMonthlyStats(driverID, year, month, requests, s)

	today := e.Now()
	if stats.RemainingRequired > 0 && today.InMonth(year, month) && today.Day >= s.NotificationDay {
		go e.Notifier.NotifyQuotaShortfall(context.WithoutCancel(ctx), stats)
	}
	return stats, nil
}

// stamp fills team and external-driver information from the directory
// and defaults the origin to self-service.
func (e *Engine) stamp(ctx context.Context, cand *VacationRequest) error {
	if cand.Origin == "" {
		cand.Origin = OriginSelfService
	}
	driver, err := e.Drivers.GetDriver(ctx, cand.DriverID)
	if err != nil {
		return err
	}
	cand.Team = driver.Team
	cand.ExternalDriver = driver.External
	return nil
}

func (e *Engine) notifyRejection(cand VacationRequest, result ValidationResult) {
	if result.Accepted || result.Reason != KindCapacityExceeded {
		return
	}
	go e.Notifier.NotifyCapacityExceeded(context.Background(), cand, result.Resolution)
}
