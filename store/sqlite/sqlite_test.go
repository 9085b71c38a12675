package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
	"github.com/fleetops/roster-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedRequest(id, driver, team, date string, status roster.RequestStatus, ws roster.WorkStatus) *roster.VacationRequest {
	return &roster.VacationRequest{
		ID:          id,
		DriverID:    roster.DriverID(driver),
		Team:        roster.Team(team),
		Date:        calendar.MustParseDate(date),
		WorkStatus:  ws,
		Status:      status,
		Origin:      roster.OriginSelfService,
		RequestedAt: time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestStore_RequestRoundTrip(t *testing.T) {
	// GIVEN: A persisted request
	// WHEN: Loading it by ID
	// THEN: Every field survives the round trip

	s := newTestStore(t)
	ctx := context.Background()

	orig := seedRequest("req-1", "drv-1", "A", "2025-09-20", roster.StatusApproved, roster.WorkStatusNightShift)
	orig.ExternalDriver = true
	require.NoError(t, s.Persist(ctx, orig))

	got, err := s.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, orig.DriverID, got.DriverID)
	assert.Equal(t, orig.Team, got.Team)
	assert.Equal(t, orig.Date, got.Date)
	assert.Equal(t, orig.WorkStatus, got.WorkStatus)
	assert.Equal(t, orig.Status, got.Status)
	assert.Equal(t, orig.Origin, got.Origin)
	assert.True(t, got.ExternalDriver)
	assert.True(t, orig.RequestedAt.Equal(got.RequestedAt))
}

func TestStore_GetMissingRequest(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "req-missing")
	assert.ErrorIs(t, err, roster.ErrRequestNotFound)
}

func TestStore_RemoveMissingRequest(t *testing.T) {
	s := newTestStore(t)
	err := s.Remove(context.Background(), "req-missing")
	assert.ErrorIs(t, err, roster.ErrRequestNotFound)
}

func TestStore_ListApproved_FiltersStatusAndCategory(t *testing.T) {
	// GIVEN: Approved, pending and working requests on one team and date
	// WHEN: Listing approved off requests
	// THEN: Only approved day-off and night-shift rows return

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Persist(ctx, seedRequest("req-1", "drv-1", "B", "2025-09-09", roster.StatusApproved, roster.WorkStatusDayOff)))
	require.NoError(t, s.Persist(ctx, seedRequest("req-2", "drv-2", "B", "2025-09-09", roster.StatusApproved, roster.WorkStatusNightShift)))
	require.NoError(t, s.Persist(ctx, seedRequest("req-3", "drv-3", "B", "2025-09-09", roster.StatusPending, roster.WorkStatusDayOff)))
	require.NoError(t, s.Persist(ctx, seedRequest("req-4", "drv-4", "B", "2025-09-09", roster.StatusApproved, roster.WorkStatusWorking)))
	require.NoError(t, s.Persist(ctx, seedRequest("req-5", "drv-5", "A", "2025-09-09", roster.StatusApproved, roster.WorkStatusDayOff)))
	require.NoError(t, s.Persist(ctx, seedRequest("req-6", "drv-6", "B", "2025-09-10", roster.StatusApproved, roster.WorkStatusDayOff)))

	got, err := s.ListApproved(ctx, "B", calendar.MustParseDate("2025-09-09"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "req-1", got[0].ID)
	assert.Equal(t, "req-2", got[1].ID)
}

func TestStore_ListByDriverMonth_Bounds(t *testing.T) {
	// GIVEN: Requests on the month's edges and outside it
	// WHEN: Listing the driver's September
	// THEN: The first and last day are included, neighbors are not

	s := newTestStore(t)
	ctx := context.Background()

	for i, date := range []string{"2025-08-31", "2025-09-01", "2025-09-30", "2025-10-01"} {
		require.NoError(t, s.Persist(ctx, seedRequest(
			"req-"+string(rune('a'+i)), "drv-1", "A", date, roster.StatusApproved, roster.WorkStatusDayOff)))
	}

	got, err := s.ListByDriverMonth(ctx, "drv-1", 2025, time.September)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, calendar.MustParseDate("2025-09-01"), got[0].Date)
	assert.Equal(t, calendar.MustParseDate("2025-09-30"), got[1].Date)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestStore_SettingsUpsert(t *testing.T) {
	// GIVEN: No settings row
	// WHEN: Saving twice and loading
	// THEN: The first load fails with ErrNoSettings, the last save wins

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadSettings(ctx)
	assert.ErrorIs(t, err, roster.ErrNoSettings)

	first := roster.DefaultSettings()
	first.GlobalDefaultLimit = 5
	require.NoError(t, s.SaveSettings(ctx, first))

	second := roster.DefaultSettings()
	second.GlobalDefaultLimit = 7
	second.BlackoutDates[calendar.MustParseDate("2026-01-01")] = true
	require.NoError(t, s.SaveSettings(ctx, second))

	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, got.GlobalDefaultLimit)
	assert.True(t, got.IsBlackout(calendar.MustParseDate("2026-01-01")))
}

// =============================================================================
// DRIVERS
// =============================================================================

func TestStore_DriverUpsert(t *testing.T) {
	// GIVEN: A saved driver
	// WHEN: Saving again with a new team and loading
	// THEN: The record is replaced, not duplicated

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDriver(ctx, roster.Driver{ID: "drv-1", Name: "Iwata", Team: "A"}))
	require.NoError(t, s.SaveDriver(ctx, roster.Driver{ID: "drv-1", Name: "Iwata", Team: "B", External: true}))

	got, err := s.GetDriver(ctx, "drv-1")
	require.NoError(t, err)
	assert.Equal(t, roster.Team("B"), got.Team)
	assert.True(t, got.External)

	all, err := s.ListDrivers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_GetMissingDriver(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetDriver(context.Background(), "ghost")
	assert.ErrorIs(t, err, roster.ErrDriverNotFound)
}
