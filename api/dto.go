/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the wire contract. Dates travel as YYYY-MM-DD strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers validate; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
  - factory/settings.go: SettingsJSON used for the settings endpoints
*/
package api

import (
	"time"

	"github.com/fleetops/roster-engine/factory"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ResolutionDTO reports which capacity rule applied and its limit.
type ResolutionDTO struct {
	Team   string `json:"team"`
	Date   string `json:"date"`
	Limit  int    `json:"limit"`
	Rule   string `json:"rule"`
	Period string `json:"period,omitempty"`
}

// SubmitRequestDTO is the body for request creation and preflight.
type SubmitRequestDTO struct {
	DriverID   string `json:"driver_id"`
	Date       string `json:"date"`
	WorkStatus string `json:"work_status"`
	Origin     string `json:"origin,omitempty"` // self_service (default) or admin
}

// ValidationResultDTO reports the outcome of a validation chain.
type ValidationResultDTO struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Period   string `json:"period,omitempty"`
}

func toValidationResultDTO(res roster.ValidationResult) ValidationResultDTO {
	return ValidationResultDTO{
		Accepted: res.Accepted,
		Reason:   string(res.Reason),
		Limit:    res.Resolution.Limit,
		Rule:     string(res.Resolution.Rule),
		Period:   res.Resolution.PeriodName,
	}
}

// RequestDTO represents a vacation request in API responses.
type RequestDTO struct {
	ID             string `json:"id"`
	DriverID       string `json:"driver_id"`
	Team           string `json:"team"`
	Date           string `json:"date"`
	WorkStatus     string `json:"work_status"`
	Status         string `json:"status"`
	Origin         string `json:"origin"`
	ExternalDriver bool   `json:"external_driver"`
	RequestedAt    string `json:"requested_at,omitempty"`
}

func toRequestDTO(r *roster.VacationRequest) RequestDTO {
	dto := RequestDTO{
		ID:             r.ID,
		DriverID:       string(r.DriverID),
		Team:           string(r.Team),
		Date:           r.Date.String(),
		WorkStatus:     string(r.WorkStatus),
		Status:         string(r.Status),
		Origin:         string(r.Origin),
		ExternalDriver: r.ExternalDriver,
	}
	if !r.RequestedAt.IsZero() {
		dto.RequestedAt = r.RequestedAt.Format(time.RFC3339)
	}
	return dto
}

// CommitResponse wraps a created request with its validation outcome.
type CommitResponse struct {
	Result  ValidationResultDTO `json:"result"`
	Request *RequestDTO         `json:"request,omitempty"`
}

// StatsDTO is a driver's monthly quota position.
type StatsDTO struct {
	DriverID          string `json:"driver_id"`
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	TotalOffDays      int    `json:"total_off_days"`
	RequiredMinimum   int    `json:"required_minimum"`
	RemainingRequired int    `json:"remaining_required"`
	MaxAllowed        int    `json:"max_allowed"`
	OverQuota         bool   `json:"over_quota"`
}

func toStatsDTO(s roster.MonthlyVacationStats) StatsDTO {
	return StatsDTO{
		DriverID:          string(s.DriverID),
		Year:              s.Year,
		Month:             int(s.Month),
		TotalOffDays:      s.TotalOffDays,
		RequiredMinimum:   s.RequiredMinimum,
		RemainingRequired: s.RemainingRequired,
		MaxAllowed:        s.MaxAllowed,
		OverQuota:         s.OverQuota,
	}
}

// CapacityDTO is the team capacity report for one date.
type CapacityDTO struct {
	Team        string `json:"team"`
	Date        string `json:"date"`
	Limit       int    `json:"limit"`
	Rule        string `json:"rule"`
	Period      string `json:"period,omitempty"`
	Used        int    `json:"used"`
	Remaining   int    `json:"remaining"`
	Utilization string `json:"utilization"` // decimal ratio, e.g. "0.6667"
	Holiday     bool   `json:"holiday"`
	Blackout    bool   `json:"blackout"`
}

// DriverDTO represents a directory record.
type DriverDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	External bool   `json:"external"`
}

// CreateDriverRequest is the body for registering a driver.
type CreateDriverRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	External bool   `json:"external"`
}

// SettingsResponse wraps a settings document with configuration warnings.
type SettingsResponse struct {
	Settings factory.SettingsJSON `json:"settings"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ErrorResponse is the error body for non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
