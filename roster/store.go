/*
store.go - Collaborator interfaces

PURPOSE:
  The engine owns rule resolution, validation and capacity accounting;
  everything else - where requests live, where settings live, who the
  drivers are, how notifications reach people - arrives through these
  interfaces. Implementations: store/sqlite (production) and
  roster/store (in-memory, for tests and dev).

SEE ALSO:
  - engine.go: consumes all four interfaces
  - store/memory.go: in-memory implementations
  - ../store/sqlite/sqlite.go: SQLite implementations
*/
package roster

import (
	"context"
	"time"

	"github.com/fleetops/roster-engine/calendar"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

// RequestStore persists vacation requests. Approved off requests are the
// ground truth the capacity ledger seeds from on cold start.
type RequestStore interface {
	// Persist stores a new request.
	Persist(ctx context.Context, req *VacationRequest) error

	// Remove deletes a request. Returns ErrRequestNotFound if absent.
	Remove(ctx context.Context, id string) error

	// Get returns a request by ID. Returns ErrRequestNotFound if absent.
	Get(ctx context.Context, id string) (*VacationRequest, error)

	// ListApproved returns the approved off requests for a team on a date.
	// Used to seed the capacity ledger.
	ListApproved(ctx context.Context, team Team, date calendar.Date) ([]VacationRequest, error)

	// ListByDriverDate returns all requests a driver has for a date,
	// regardless of status. Used for the duplicate check.
	ListByDriverDate(ctx context.Context, driverID DriverID, date calendar.Date) ([]VacationRequest, error)

	// ListByDriverMonth returns all of a driver's requests in a month.
	// Used by the quota projection.
	ListByDriverMonth(ctx context.Context, driverID DriverID, year int, month time.Month) ([]VacationRequest, error)
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SettingsStore loads and saves settings snapshots. Load returns
// ErrNoSettings when nothing has been stored yet.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

// =============================================================================
// DRIVER DIRECTORY
// =============================================================================

// DriverDirectory answers who a driver is. Used to stamp team and
// external-driver flags onto new requests.
type DriverDirectory interface {
	// GetDriver returns a driver record. Returns ErrDriverNotFound if absent.
	GetDriver(ctx context.Context, id DriverID) (*Driver, error)

	// ListDrivers returns every known driver. Used by the quota scanner.
	ListDrivers(ctx context.Context) ([]Driver, error)
}

// =============================================================================
// NOTIFIER
// =============================================================================

// Notifier receives fire-and-forget events. Delivery (push, UI banner) is
// a collaborator's concern; implementations must not block the caller.
type Notifier interface {
	// NotifyQuotaShortfall fires when a driver still owes required off
	// days at or after the settings notification day.
	NotifyQuotaShortfall(ctx context.Context, stats MonthlyVacationStats)

	// NotifyCapacityExceeded fires when a request is rejected because the
	// team's cap for the date is full.
	NotifyCapacityExceeded(ctx context.Context, req VacationRequest, res Resolution)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) NotifyQuotaShortfall(context.Context, MonthlyVacationStats)        {}
func (NopNotifier) NotifyCapacityExceeded(context.Context, VacationRequest, Resolution) {}
