/*
handlers.go - HTTP API handlers for the roster scheduling engine

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Limits:
    GET    /api/limits/resolve         Resolve the effective off-day limit

  Requests:
    POST   /api/requests/validate      Preflight a request (no side effects)
    POST   /api/requests               Submit and commit a request
    DELETE /api/requests/{id}          Withdraw a request

  Drivers:
    GET    /api/drivers                List all drivers
    POST   /api/drivers                Register a driver
    GET    /api/drivers/{id}           Get driver details
    GET    /api/drivers/{id}/stats     Monthly off-day stats

  Teams:
    GET    /api/teams/{team}/capacity  Capacity report for one date

  Settings:
    GET    /api/settings               Current settings document
    PUT    /api/settings               Replace settings document

ERROR HANDLING:
  Business rejections are values, not errors: validation endpoints
  return 200 with accepted=false, commit returns 409 with the result.
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, invalid settings
  - 404: Resource not found
  - 409: Rejected commit, rejected withdrawal
  - 500: Internal errors

CACHING:
  Monthly stats are cached with a short TTL and invalidated when a
  commit or withdrawal touches the driver's month.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - roster/engine.go: Domain logic
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/factory"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DriverRegistry extends the read-only directory with registration.
type DriverRegistry interface {
	roster.DriverDirectory
	SaveDriver(ctx context.Context, d roster.Driver) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *roster.Engine
	Settings roster.SettingsStore
	Drivers  DriverRegistry
	Log      *logrus.Logger

	// Short-lived cache of monthly stats responses
	statsCache *cache.Cache
}

// NewHandler creates a new handler around the engine and its stores.
func NewHandler(engine *roster.Engine, settings roster.SettingsStore, drivers DriverRegistry, log *logrus.Logger, cacheTTL time.Duration) *Handler {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Handler{
		Engine:     engine,
		Settings:   settings,
		Drivers:    drivers,
		Log:        log,
		statsCache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

// =============================================================================
// LIMIT HANDLERS
// =============================================================================

// ResolveLimit returns the effective off-day limit for a team and date.
// GET /api/limits/resolve?team=A&date=2025-09-09
func (h *Handler) ResolveLimit(w http.ResponseWriter, r *http.Request) {
	team := roster.Team(r.URL.Query().Get("team"))
	if team == "" {
		writeError(w, http.StatusBadRequest, "Missing team parameter", nil)
		return
	}
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	res, err := h.Engine.ResolveLimit(r.Context(), date, team)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve limit", err)
		return
	}

	writeJSON(w, http.StatusOK, ResolutionDTO{
		Team:   string(team),
		Date:   date.String(),
		Limit:  res.Limit,
		Rule:   string(res.Rule),
		Period: res.PeriodName,
	})
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ValidateRequest runs the validation chain without committing anything.
// POST /api/requests/validate
func (h *Handler) ValidateRequest(w http.ResponseWriter, r *http.Request) {
	cand, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}

	res, err := h.Engine.Validate(r.Context(), cand)
	if err != nil {
		h.writeDomainError(w, "Failed to validate request", err)
		return
	}

	writeJSON(w, http.StatusOK, toValidationResultDTO(res))
}

// SubmitRequest validates and commits a request in one step.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	cand, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}

	res, req, err := h.Engine.Commit(r.Context(), cand)
	if err != nil {
		h.writeDomainError(w, "Failed to submit request", err)
		return
	}

	if !res.Accepted {
		writeJSON(w, http.StatusConflict, CommitResponse{Result: toValidationResultDTO(res)})
		return
	}

	h.invalidateStats(req.DriverID, req.Date)
	dto := toRequestDTO(req)
	writeJSON(w, http.StatusCreated, CommitResponse{
		Result:  toValidationResultDTO(res),
		Request: &dto,
	})
}

// WithdrawRequest withdraws a request, restoring its capacity slot.
// DELETE /api/requests/{id}?origin=admin
func (h *Handler) WithdrawRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	origin := roster.Origin(r.URL.Query().Get("origin"))
	if origin == "" {
		origin = roster.OriginSelfService
	}

	existing, err := h.Engine.Requests.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to load request", err)
		return
	}

	res, err := h.Engine.Withdraw(r.Context(), id, origin)
	if err != nil {
		h.writeDomainError(w, "Failed to withdraw request", err)
		return
	}
	if !res.Accepted {
		writeJSON(w, http.StatusConflict, toValidationResultDTO(res))
		return
	}

	h.invalidateStats(existing.DriverID, existing.Date)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeCandidate(w http.ResponseWriter, r *http.Request) (roster.VacationRequest, bool) {
	var body SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return roster.VacationRequest{}, false
	}

	date, err := calendar.ParseDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return roster.VacationRequest{}, false
	}

	status := roster.WorkStatus(body.WorkStatus)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid work_status %q", body.WorkStatus), nil)
		return roster.VacationRequest{}, false
	}

	return roster.VacationRequest{
		DriverID:   roster.DriverID(body.DriverID),
		Date:       date,
		WorkStatus: status,
		Origin:     roster.Origin(body.Origin),
	}, true
}

// =============================================================================
// DRIVER HANDLERS
// =============================================================================

// ListDrivers returns all registered drivers.
// GET /api/drivers
func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Drivers.ListDrivers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drivers", err)
		return
	}

	dtos := make([]DriverDTO, len(drivers))
	for i, d := range drivers {
		dtos[i] = DriverDTO{
			ID:       string(d.ID),
			Name:     d.Name,
			Team:     string(d.Team),
			External: d.External,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDriver registers a driver in the directory.
// POST /api/drivers
func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Team == "" {
		writeError(w, http.StatusBadRequest, "id and team are required", nil)
		return
	}

	d := roster.Driver{
		ID:       roster.DriverID(req.ID),
		Name:     req.Name,
		Team:     roster.Team(req.Team),
		External: req.External,
	}
	if err := h.Drivers.SaveDriver(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save driver", err)
		return
	}

	writeJSON(w, http.StatusCreated, DriverDTO{
		ID:       string(d.ID),
		Name:     d.Name,
		Team:     string(d.Team),
		External: d.External,
	})
}

// GetDriver returns a single driver.
// GET /api/drivers/{id}
func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id := roster.DriverID(chi.URLParam(r, "id"))

	d, err := h.Drivers.GetDriver(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get driver", err)
		return
	}

	writeJSON(w, http.StatusOK, DriverDTO{
		ID:       string(d.ID),
		Name:     d.Name,
		Team:     string(d.Team),
		External: d.External,
	})
}

// GetDriverStats returns a driver's monthly off-day quota position.
// GET /api/drivers/{id}/stats?year=2025&month=9
func (h *Handler) GetDriverStats(w http.ResponseWriter, r *http.Request) {
	id := roster.DriverID(chi.URLParam(r, "id"))

	now := time.Now()
	year := now.Year()
	month := now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = time.Month(m)
	}

	key := statsKey(id, year, month)
	if cached, ok := h.statsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := h.Engine.GetMonthlyStats(r.Context(), id, year, month)
	if err != nil {
		h.writeDomainError(w, "Failed to compute stats", err)
		return
	}

	dto := toStatsDTO(stats)
	h.statsCache.SetDefault(key, dto)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// TEAM HANDLERS
// =============================================================================

// GetTeamCapacity returns the capacity report for a team on one date.
// GET /api/teams/{team}/capacity?date=2025-09-09
func (h *Handler) GetTeamCapacity(w http.ResponseWriter, r *http.Request) {
	team := roster.Team(chi.URLParam(r, "team"))
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	report, err := h.Engine.TeamCapacity(r.Context(), team, date)
	if err != nil {
		h.writeDomainError(w, "Failed to build capacity report", err)
		return
	}

	writeJSON(w, http.StatusOK, CapacityDTO{
		Team:        string(report.Team),
		Date:        report.Date.String(),
		Limit:       report.Limit,
		Rule:        string(report.Rule),
		Period:      report.PeriodName,
		Used:        report.Used,
		Remaining:   report.Remaining,
		Utilization: report.Utilization.String(),
		Holiday:     report.Holiday,
		Blackout:    report.Blackout,
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current settings document.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.LoadSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load settings", err)
		return
	}

	writeJSON(w, http.StatusOK, SettingsResponse{
		Settings: factory.ToJSON(s),
		Warnings: periodWarnings(s),
	})
}

// UpdateSettings replaces the settings document.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, err := factory.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	if err := h.Settings.SaveSettings(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	h.statsCache.Flush()
	h.Log.Info("settings updated")

	writeJSON(w, http.StatusOK, SettingsResponse{
		Settings: factory.ToJSON(s),
		Warnings: periodWarnings(s),
	})
}

func periodWarnings(s *roster.Settings) []string {
	var warnings []string
	for _, o := range s.OverlappingPeriods() {
		warnings = append(warnings, fmt.Sprintf("periods %q and %q overlap; %q wins on shared dates", o.First, o.Second, o.First))
	}
	return warnings
}

// =============================================================================
// HELPERS
// =============================================================================

func statsKey(id roster.DriverID, year int, month time.Month) string {
	return fmt.Sprintf("stats:%s:%d-%02d", id, year, int(month))
}

func (h *Handler) invalidateStats(id roster.DriverID, date calendar.Date) {
	h.statsCache.Delete(statsKey(id, date.Year, date.Month))
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, roster.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
