/*
errors.go - Error taxonomy for the scheduling core

PURPOSE:
  Business-rule violations (past date, blackout, capacity, ...) are
  expected outcomes: they travel as ErrorKind values inside a
  ValidationResult and are never Go errors. Go errors are reserved for
  integrity problems - malformed settings, missing records, store
  failures.

USAGE:
  Callers classify unexpected errors with helpers:

    if roster.IsNotFound(err) { ... 404 ... }
    if errors.Is(err, roster.ErrInvalidSettings) { ... 400 ... }

SEE ALSO:
  - validate.go: produces ValidationResult values
  - settings.go: produces InvalidSettingsError
*/
package roster

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS - Recoverable validation outcomes, not Go errors
// =============================================================================

// ErrorKind names the business rule a candidate request violated. The core
// carries no presentation text; the UI localizes these.
type ErrorKind string

const (
	KindNone                    ErrorKind = ""
	KindPastDate                ErrorKind = "past_date"
	KindWithinRestrictionWindow ErrorKind = "within_restriction_window"
	KindBlackoutDate            ErrorKind = "blackout_date"
	KindDuplicateRequest        ErrorKind = "duplicate_request"
	KindCapacityExceeded        ErrorKind = "capacity_exceeded"
	KindInvalidSettings         ErrorKind = "invalid_settings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrDriverNotFound is returned when a referenced driver doesn't exist.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrNoSettings is returned when no settings snapshot has been stored.
	ErrNoSettings = errors.New("no settings snapshot stored")

	// ErrInvalidSettings is returned when a settings snapshot fails
	// load-time validation. Wrapped by InvalidSettingsError.
	ErrInvalidSettings = errors.New("invalid settings")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidSettingsError reports which field of a settings snapshot is
// malformed. Settings are rejected up front instead of silently defaulting.
type InvalidSettingsError struct {
	Field  string
	Detail string
}

func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("invalid settings: %s: %s", e.Field, e.Detail)
}

func (e *InvalidSettingsError) Unwrap() error { return ErrInvalidSettings }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrDriverNotFound) ||
		errors.Is(err, ErrNoSettings)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSettings)
}
