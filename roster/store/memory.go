// Package store provides in-memory implementations of the roster
// collaborator interfaces, for tests and development.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// MEMORY REQUEST STORE
// =============================================================================

// Memory implements roster.RequestStore, roster.SettingsStore and
// roster.DriverDirectory in process memory.
type Memory struct {
	mu       sync.RWMutex
	requests map[string]roster.VacationRequest
	drivers  map[roster.DriverID]roster.Driver
	settings *roster.Settings
}

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[string]roster.VacationRequest),
		drivers:  make(map[roster.DriverID]roster.Driver),
	}
}

func (m *Memory) Persist(_ context.Context, req *roster.VacationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	return nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return roster.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*roster.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, roster.ErrRequestNotFound
	}
	return &req, nil
}

func (m *Memory) ListApproved(_ context.Context, team roster.Team, date calendar.Date) ([]roster.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []roster.VacationRequest
	for _, r := range m.requests {
		if r.Team == team && r.Date == date && r.Status == roster.StatusApproved && r.Off() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListByDriverDate(_ context.Context, driverID roster.DriverID, date calendar.Date) ([]roster.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []roster.VacationRequest
	for _, r := range m.requests {
		if r.DriverID == driverID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListByDriverMonth(_ context.Context, driverID roster.DriverID, year int, month time.Month) ([]roster.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []roster.VacationRequest
	for _, r := range m.requests {
		if r.DriverID == driverID && r.Date.InMonth(year, month) {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadSettings(_ context.Context) (*roster.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, roster.ErrNoSettings
	}
	return m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s *roster.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// =============================================================================
// DRIVER DIRECTORY
// =============================================================================

func (m *Memory) GetDriver(_ context.Context, id roster.DriverID) (*roster.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, roster.ErrDriverNotFound
	}
	return &d, nil
}

func (m *Memory) ListDrivers(_ context.Context) ([]roster.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]roster.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	return out, nil
}

// SaveDriver upserts a directory record.
func (m *Memory) SaveDriver(_ context.Context, d roster.Driver) error {
	m.AddDriver(d)
	return nil
}

// AddDriver registers a driver. Test/dev helper; production directories
// live behind the sqlite store.
func (m *Memory) AddDriver(d roster.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

// =============================================================================
// RECORDING NOTIFIER - for asserting emitted events in tests
// =============================================================================

// RecordingNotifier implements roster.Notifier and remembers every event.
type RecordingNotifier struct {
	mu         sync.Mutex
	Shortfalls []roster.MonthlyVacationStats
	Capacity   []roster.VacationRequest
}

func (n *RecordingNotifier) NotifyQuotaShortfall(_ context.Context, stats roster.MonthlyVacationStats) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Shortfalls = append(n.Shortfalls, stats)
}

func (n *RecordingNotifier) NotifyCapacityExceeded(_ context.Context, req roster.VacationRequest, _ roster.Resolution) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Capacity = append(n.Capacity, req)
}

// ShortfallCount returns how many shortfall events have fired.
func (n *RecordingNotifier) ShortfallCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Shortfalls)
}

// CapacityCount returns how many capacity events have fired.
func (n *RecordingNotifier) CapacityCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Capacity)
}
