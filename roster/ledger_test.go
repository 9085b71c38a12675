package roster_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// RESERVATION SEMANTICS
// =============================================================================

func TestCapacityLedger_ReserveUpToLimit(t *testing.T) {
	// GIVEN: An empty ledger and a limit of 2
	// WHEN: Reserving three slots in sequence
	// THEN: The first two succeed, the third is refused

	l := roster.NewCapacityLedger(nil)
	d := calendar.MustParseDate("2025-09-09")

	ok, n, err := l.TryReserve("B", d, +1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	ok, n, err = l.TryReserve("B", d, +1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	ok, n, err = l.TryReserve("B", d, +1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, n)
}

func TestCapacityLedger_ReleaseNeverRefused(t *testing.T) {
	// GIVEN: A ledger with one reserved slot
	// WHEN: Releasing twice
	// THEN: Both releases succeed and the count clamps at zero

	l := roster.NewCapacityLedger(nil)
	d := calendar.MustParseDate("2025-09-09")

	_, _, err := l.TryReserve("B", d, +1, 5)
	require.NoError(t, err)

	ok, n, err := l.TryReserve("B", d, -1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	ok, n, err = l.TryReserve("B", d, -1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestCapacityLedger_KeysAreIndependent(t *testing.T) {
	// GIVEN: Reservations for one team and date
	// WHEN: Reserving for another team or another date
	// THEN: Counters do not interfere

	l := roster.NewCapacityLedger(nil)
	d1 := calendar.MustParseDate("2025-09-09")
	d2 := calendar.MustParseDate("2025-09-10")

	ok, _, _ := l.TryReserve("A", d1, +1, 1)
	assert.True(t, ok)
	ok, _, _ = l.TryReserve("A", d1, +1, 1)
	assert.False(t, ok)

	ok, _, _ = l.TryReserve("B", d1, +1, 1)
	assert.True(t, ok)
	ok, _, _ = l.TryReserve("A", d2, +1, 1)
	assert.True(t, ok)
}

// =============================================================================
// COLD-START SEEDING
// =============================================================================

func TestCapacityLedger_SeedsFromLoaderOnFirstTouch(t *testing.T) {
	// GIVEN: A loader reporting 3 already-approved requests
	// WHEN: The key is first touched with limit 4
	// THEN: The counter starts at 3, leaving one slot

	var loads int
	loader := func(team roster.Team, date calendar.Date) (int, error) {
		loads++
		return 3, nil
	}
	l := roster.NewCapacityLedger(loader)
	d := calendar.MustParseDate("2025-09-09")

	count, err := l.CurrentCount("B", d)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	ok, n, err := l.TryReserve("B", d, +1, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	ok, _, err = l.TryReserve("B", d, +1, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	// Seeded once; later touches use the in-memory counter.
	assert.Equal(t, 1, loads)
}

func TestCapacityLedger_LoaderErrorSurfaces(t *testing.T) {
	// GIVEN: A loader that fails
	// WHEN: The key is first touched
	// THEN: The error propagates and nothing is reserved

	boom := errors.New("store unavailable")
	l := roster.NewCapacityLedger(func(roster.Team, calendar.Date) (int, error) {
		return 0, boom
	})

	_, _, err := l.TryReserve("B", calendar.MustParseDate("2025-09-09"), +1, 4)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestCapacityLedger_ConcurrentReservations_NeverOversell(t *testing.T) {
	// GIVEN: 50 goroutines racing for 5 slots
	// WHEN: All call TryReserve concurrently
	// THEN: Exactly 5 succeed

	const workers = 50
	const limit = 5

	l := roster.NewCapacityLedger(nil)
	d := calendar.MustParseDate("2025-09-09")

	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := l.TryReserve("B", d, +1, limit)
			if err != nil {
				results <- false
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	var won int
	for ok := range results {
		if ok {
			won++
		}
	}
	assert.Equal(t, limit, won)

	count, err := l.CurrentCount("B", d)
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}
