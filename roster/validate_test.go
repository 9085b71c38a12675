package roster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
	"github.com/fleetops/roster-engine/roster/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newValidator(t *testing.T) (*roster.Validator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return &roster.Validator{
		Ledger:   roster.NewCapacityLedger(nil),
		Requests: mem,
	}, mem
}

func candidate(driver roster.DriverID, date string) *roster.VacationRequest {
	return &roster.VacationRequest{
		DriverID:   driver,
		Team:       "A",
		Date:       calendar.MustParseDate(date),
		WorkStatus: roster.WorkStatusDayOff,
		Origin:     roster.OriginSelfService,
	}
}

var sept1 = calendar.MustParseDate("2025-09-01")

// =============================================================================
// CREATION CHAIN
// =============================================================================

func TestValidateCreate_PastDateRejected(t *testing.T) {
	// GIVEN: Today is 2025-09-01
	// WHEN: Requesting 2025-08-31
	// THEN: Rejected as a past date, even for admins

	v, _ := newValidator(t)
	s := roster.DefaultSettings()

	cand := candidate("drv-1", "2025-08-31")
	cand.Origin = roster.OriginAdmin

	res, err := v.ValidateCreate(context.Background(), cand, s, sept1)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, roster.KindPastDate, res.Reason)
}

func TestValidateCreate_RestrictionWindowBoundaries(t *testing.T) {
	// GIVEN: Today is 2025-09-01 with a 10 day restriction window
	// WHEN: Self-service requests land at various distances
	// THEN: Today through day 9 reject; day 10 onward is allowed

	v, _ := newValidator(t)
	s := roster.DefaultSettings()

	cases := []struct {
		date     string
		accepted bool
	}{
		{"2025-09-01", false}, // today, 0 days out
		{"2025-09-05", false}, // 4 days out
		{"2025-09-10", false}, // 9 days out, last rejected
		{"2025-09-11", true},  // exactly 10 days out, first allowed
		{"2025-09-15", true},  // 14 days out
	}

	for _, tc := range cases {
		res, err := v.ValidateCreate(context.Background(), candidate("drv-1", tc.date), s, sept1)
		require.NoError(t, err)
		if tc.accepted {
			assert.True(t, res.Accepted, "date %s", tc.date)
		} else {
			assert.False(t, res.Accepted, "date %s", tc.date)
			assert.Equal(t, roster.KindWithinRestrictionWindow, res.Reason, "date %s", tc.date)
		}
	}
}

func TestValidateCreate_AdminBypassesRestrictionWindow(t *testing.T) {
	// GIVEN: A date 4 days out, inside the window
	// WHEN: An admin submits it
	// THEN: The window does not apply

	v, _ := newValidator(t)
	s := roster.DefaultSettings()

	cand := candidate("drv-1", "2025-09-05")
	cand.Origin = roster.OriginAdmin

	res, err := v.ValidateCreate(context.Background(), cand, s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestValidateCreate_BlackoutRejectsOffOnly(t *testing.T) {
	// GIVEN: 2025-09-20 is a blackout date
	// WHEN: An off request and a working request target it
	// THEN: The off request rejects, the working request passes

	v, _ := newValidator(t)
	s := roster.DefaultSettings()
	s.BlackoutDates = map[calendar.Date]bool{calendar.MustParseDate("2025-09-20"): true}

	res, err := v.ValidateCreate(context.Background(), candidate("drv-1", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, roster.KindBlackoutDate, res.Reason)

	working := candidate("drv-1", "2025-09-20")
	working.WorkStatus = roster.WorkStatusWorking
	res, err = v.ValidateCreate(context.Background(), working, s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestValidateCreate_DuplicateCategories(t *testing.T) {
	// GIVEN: An approved day-off request for drv-1 on 2025-09-20
	// WHEN: The driver requests day-off or night-shift for the same date
	// THEN: Both reject; any two off-type requests collide

	v, mem := newValidator(t)
	s := roster.DefaultSettings()

	existing := candidate("drv-1", "2025-09-20")
	existing.ID = "req-1"
	existing.Status = roster.StatusApproved
	require.NoError(t, mem.Persist(context.Background(), existing))

	res, err := v.ValidateCreate(context.Background(), candidate("drv-1", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.Equal(t, roster.KindDuplicateRequest, res.Reason)

	night := candidate("drv-1", "2025-09-20")
	night.WorkStatus = roster.WorkStatusNightShift
	res, err = v.ValidateCreate(context.Background(), night, s, sept1)
	require.NoError(t, err)
	assert.Equal(t, roster.KindDuplicateRequest, res.Reason)

	// Another driver on the same date is fine.
	res, err = v.ValidateCreate(context.Background(), candidate("drv-2", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestValidateCreate_RejectedRequestDoesNotBlock(t *testing.T) {
	// GIVEN: A previously rejected request for the same driver and date
	// WHEN: The driver tries again
	// THEN: The rejected record does not count as a duplicate

	v, mem := newValidator(t)
	s := roster.DefaultSettings()

	old := candidate("drv-1", "2025-09-20")
	old.ID = "req-1"
	old.Status = roster.StatusRejected
	require.NoError(t, mem.Persist(context.Background(), old))

	res, err := v.ValidateCreate(context.Background(), candidate("drv-1", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestValidateCreate_CapacityReservesAtomically(t *testing.T) {
	// GIVEN: A global limit of 1
	// WHEN: Two drivers request the same date in sequence
	// THEN: The first acceptance holds the slot; the second rejects

	v, _ := newValidator(t)
	s := roster.DefaultSettings()
	s.GlobalDefaultLimit = 1

	res, err := v.ValidateCreate(context.Background(), candidate("drv-1", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 1, res.NewCount)
	assert.Equal(t, roster.RuleGlobalDefault, res.Resolution.Rule)

	res, err = v.ValidateCreate(context.Background(), candidate("drv-2", "2025-09-20"), s, sept1)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, roster.KindCapacityExceeded, res.Reason)
	assert.Equal(t, 1, res.Resolution.Limit)
}

func TestValidateCreate_WorkingSkipsCapacity(t *testing.T) {
	// GIVEN: A date already at capacity
	// WHEN: A working request targets it
	// THEN: It passes without touching the ledger

	v, _ := newValidator(t)
	s := roster.DefaultSettings()
	s.GlobalDefaultLimit = 0

	working := candidate("drv-1", "2025-09-20")
	working.WorkStatus = roster.WorkStatusWorking

	res, err := v.ValidateCreate(context.Background(), working, s, sept1)
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	count, err := v.Ledger.CurrentCount("A", calendar.MustParseDate("2025-09-20"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// =============================================================================
// DELETION CHAIN
// =============================================================================

func TestValidateDelete_WindowAppliesSymmetrically(t *testing.T) {
	// GIVEN: An approved request 4 days out
	// WHEN: Self-service and admin withdrawals are checked
	// THEN: Self-service rejects inside the window; admin passes

	v, _ := newValidator(t)
	s := roster.DefaultSettings()

	existing := candidate("drv-1", "2025-09-05")
	existing.Status = roster.StatusApproved

	res := v.ValidateDelete(existing, s, sept1, roster.OriginSelfService)
	assert.False(t, res.Accepted)
	assert.Equal(t, roster.KindWithinRestrictionWindow, res.Reason)

	res = v.ValidateDelete(existing, s, sept1, roster.OriginAdmin)
	assert.True(t, res.Accepted)
}

func TestValidateDelete_PastRequestsImmutable(t *testing.T) {
	// GIVEN: A request whose date has passed
	// WHEN: Anyone tries to withdraw it
	// THEN: Rejected as a past date

	v, _ := newValidator(t)
	s := roster.DefaultSettings()

	existing := candidate("drv-1", "2025-08-20")
	res := v.ValidateDelete(existing, s, sept1, roster.OriginAdmin)
	assert.False(t, res.Accepted)
	assert.Equal(t, roster.KindPastDate, res.Reason)
}
