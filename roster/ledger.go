/*
ledger.go - The concurrency-safe capacity counter

PURPOSE:
  Tracks, per (team, date), how many approved off requests currently
  occupy the team's slots for that day. This is the single mutation point
  in the engine and the mechanism behind the correctness invariant:
  approved off requests for a team on a date never exceed the resolved
  cap, even when two requests race for the last slot.

INVARIANT:
  For any (team, date) with cap L, at most L TryReserve(+1) calls succeed
  between the corresponding releases, regardless of interleaving.

HOW:
  Read-count, compare, write all happen under one mutex. A per-key lock
  would admit more parallelism, but request submission is human-paced;
  one mutex keeps the critical section obviously correct.

COLD START:
  Counters are not persisted. The first touch of a key seeds it from the
  request store (count of approved off requests for that team and date),
  inside the same critical section, so a freshly restarted server cannot
  hand out slots it has already given away.

SEE ALSO:
  - validate.go: the only caller of TryReserve(+1)
  - engine.go: wires the store-backed seed loader
*/
package roster

import (
	"fmt"
	"sync"

	"github.com/fleetops/roster-engine/calendar"
)

// CountLoader seeds a counter on first touch. It returns the number of
// currently approved off requests for the team on the date.
type CountLoader func(team Team, date calendar.Date) (int, error)

type slotKey struct {
	Team Team
	Date calendar.Date
}

// CapacityLedger owns the per-(team, date) approved-off counters.
type CapacityLedger struct {
	mu     sync.Mutex
	counts map[slotKey]int
	seeded map[slotKey]bool
	loader CountLoader
}

// NewCapacityLedger creates a ledger. loader may be nil, in which case
// every counter starts at zero (useful in tests).
func NewCapacityLedger(loader CountLoader) *CapacityLedger {
	return &CapacityLedger{
		counts: make(map[slotKey]int),
		seeded: make(map[slotKey]bool),
		loader: loader,
	}
}

// CurrentCount returns the current approved-off count for the key,
// seeding it from the store if this is the first touch.
func (l *CapacityLedger) CurrentCount(team Team, date calendar.Date) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(slotKey{Team: team, Date: date})
}

// TryReserve atomically applies delta to the counter. For positive deltas
// it refuses (ok=false, counter untouched) when the result would exceed
// limit. Negative deltas always succeed; the counter clamps at zero so a
// stray release can never drive it negative.
func (l *CapacityLedger) TryReserve(team Team, date calendar.Date, delta, limit int) (ok bool, newCount int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := slotKey{Team: team, Date: date}
	count, err := l.countLocked(key)
	if err != nil {
		return false, 0, err
	}

	next := count + delta
	if delta > 0 && next > limit {
		return false, count, nil
	}
	if next < 0 {
		next = 0
	}
	l.counts[key] = next
	return true, next, nil
}

// countLocked seeds and returns the counter. Callers hold l.mu.
func (l *CapacityLedger) countLocked(key slotKey) (int, error) {
	if !l.seeded[key] {
		if l.loader != nil {
			n, err := l.loader(key.Team, key.Date)
			if err != nil {
				return 0, fmt.Errorf("seeding capacity counter for %s/%s: %w", key.Team, key.Date, err)
			}
			l.counts[key] = n
		}
		l.seeded[key] = true
	}
	return l.counts[key], nil
}
