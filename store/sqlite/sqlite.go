/*
Package sqlite provides the SQLite-backed implementation of the roster
storage interfaces.

PURPOSE:
  Implements roster.RequestStore, roster.SettingsStore and
  roster.DriverDirectory over database/sql + go-sqlite3. The same
  patterns carry to PostgreSQL with minor dialect changes.

KEY TABLES:
  drivers:            the driver directory
  vacation_requests:  one row per single-day request
  settings:           a single-row JSON snapshot of the capacity rules

INDEXES:
  idx_requests_team_date:   capacity ledger seeding (hot path on restart)
  idx_requests_driver_date: duplicate checks
  idx_requests_driver:      monthly quota projections

WAL MODE:
  Opened with WAL so readers don't block each other. Capacity atomicity
  does NOT rely on the database: roster.CapacityLedger serializes all
  reservations in process. The store only needs to report approved counts
  faithfully for cold-start seeding.

DATES:
  Stored as YYYY-MM-DD text, compared lexicographically. No timestamps,
  no timezones; the calendar.Date round-trip is exact.

SEE ALSO:
  - roster/store.go: interface definitions
  - roster/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/factory"
	"github.com/fleetops/roster-engine/roster"
)

// Store implements the roster storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		external BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_drivers_team ON drivers(team);

	CREATE TABLE IF NOT EXISTS vacation_requests (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		team TEXT NOT NULL,
		date TEXT NOT NULL,
		work_status TEXT NOT NULL,
		status TEXT NOT NULL,
		origin TEXT NOT NULL,
		external_driver BOOLEAN NOT NULL DEFAULT FALSE,
		requested_at TEXT NOT NULL
	);

	-- Capacity ledger seeding on cold start (hot path after restart)
	CREATE INDEX IF NOT EXISTS idx_requests_team_date
		ON vacation_requests(team, date);

	-- Duplicate checks
	CREATE INDEX IF NOT EXISTS idx_requests_driver_date
		ON vacation_requests(driver_id, date);

	-- Monthly quota projections
	CREATE INDEX IF NOT EXISTS idx_requests_driver
		ON vacation_requests(driver_id);

	-- Single-row settings snapshot
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) Persist(ctx context.Context, req *roster.VacationRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacation_requests
			(id, driver_id, team, date, work_status, status, origin, external_driver, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		string(req.DriverID),
		string(req.Team),
		req.Date.String(),
		string(req.WorkStatus),
		string(req.Status),
		string(req.Origin),
		req.ExternalDriver,
		req.RequestedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to persist request %s: %w", req.ID, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vacation_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove request %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrRequestNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*roster.VacationRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, driver_id, team, date, work_status, status, origin, external_driver, requested_at
		FROM vacation_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Store) ListApproved(ctx context.Context, team roster.Team, date calendar.Date) ([]roster.VacationRequest, error) {
	return s.queryRequests(ctx, `
		SELECT id, driver_id, team, date, work_status, status, origin, external_driver, requested_at
		FROM vacation_requests
		WHERE team = ? AND date = ? AND status = ?
		  AND work_status IN (?, ?)
		ORDER BY id`,
		string(team), date.String(), string(roster.StatusApproved),
		string(roster.WorkStatusDayOff), string(roster.WorkStatusNightShift))
}

func (s *Store) ListByDriverDate(ctx context.Context, driverID roster.DriverID, date calendar.Date) ([]roster.VacationRequest, error) {
	return s.queryRequests(ctx, `
		SELECT id, driver_id, team, date, work_status, status, origin, external_driver, requested_at
		FROM vacation_requests
		WHERE driver_id = ? AND date = ?
		ORDER BY id`,
		string(driverID), date.String())
}

func (s *Store) ListByDriverMonth(ctx context.Context, driverID roster.DriverID, year int, month time.Month) ([]roster.VacationRequest, error) {
	from := calendar.StartOfMonth(year, month)
	to := calendar.EndOfMonth(year, month)
	return s.queryRequests(ctx, `
		SELECT id, driver_id, team, date, work_status, status, origin, external_driver, requested_at
		FROM vacation_requests
		WHERE driver_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id`,
		string(driverID), from.String(), to.String())
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]roster.VacationRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []roster.VacationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*roster.VacationRequest, error) {
	var req roster.VacationRequest
	var driverID, team, date, workStatus, status, origin, requestedAt string
	if err := row.Scan(&req.ID, &driverID, &team, &date, &workStatus, &status, &origin, &req.ExternalDriver, &requestedAt); err != nil {
		return nil, err
	}

	parsed, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("corrupt date %q in request %s: %w", date, req.ID, err)
	}
	req.DriverID = roster.DriverID(driverID)
	req.Team = roster.Team(team)
	req.Date = parsed
	req.WorkStatus = roster.WorkStatus(workStatus)
	req.Status = roster.RequestStatus(status)
	req.Origin = roster.Origin(origin)
	if ts, err := time.Parse(time.RFC3339, requestedAt); err == nil {
		req.RequestedAt = ts
	}
	return &req, nil
}

// =============================================================================
// SETTINGS STORE - single-row JSON snapshot
// =============================================================================

func (s *Store) LoadSettings(ctx context.Context) (*roster.Settings, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM settings WHERE id = 1`).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrNoSettings
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return factory.ParseSettings(configJSON)
}

func (s *Store) SaveSettings(ctx context.Context, settings *roster.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(factory.ToJSON(settings))
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, config_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at`,
		string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// DRIVER DIRECTORY
// =============================================================================

func (s *Store) GetDriver(ctx context.Context, id roster.DriverID) (*roster.Driver, error) {
	var d roster.Driver
	var driverID, team string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, team, external FROM drivers WHERE id = ?`, string(id)).
		Scan(&driverID, &d.Name, &team, &d.External)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver %s: %w", id, err)
	}
	d.ID = roster.DriverID(driverID)
	d.Team = roster.Team(team)
	return &d, nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]roster.Driver, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, team, external FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var out []roster.Driver
	for rows.Next() {
		var d roster.Driver
		var id, team string
		if err := rows.Scan(&id, &d.Name, &team, &d.External); err != nil {
			return nil, err
		}
		d.ID = roster.DriverID(id)
		d.Team = roster.Team(team)
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveDriver inserts or updates a directory record.
func (s *Store) SaveDriver(ctx context.Context, d roster.Driver) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drivers (id, name, team, external, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, team = excluded.team, external = excluded.external`,
		string(d.ID), d.Name, string(d.Team), d.External, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save driver %s: %w", d.ID, err)
	}
	return nil
}
