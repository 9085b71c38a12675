package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/api"
	"github.com/fleetops/roster-engine/roster"
	"github.com/fleetops/roster-engine/roster/store"
)

func TestQuotaScanner_SweepNotifiesShortfalls(t *testing.T) {
	// GIVEN: A driver short of the minimum, past the notification day
	// WHEN: The scanner starts and sweeps
	// THEN: A shortfall event fires through the engine

	mem := store.NewMemory()
	notifier := &store.RecordingNotifier{}

	s := roster.DefaultSettings()
	s.MinOffDaysPerMonth = 9
	s.MaxOffDaysPerMonth = 31
	s.NotificationDay = 1 // any day of the month triggers
	require.NoError(t, mem.SaveSettings(context.Background(), s))
	mem.AddDriver(roster.Driver{ID: "drv-1", Team: "A"})

	engine := roster.NewEngine(mem, mem, mem, notifier)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	scanner := api.NewQuotaScanner(engine, mem, log)
	scanner.CheckInterval = time.Hour // first sweep runs immediately
	scanner.Start()
	defer scanner.Stop()

	require.Eventually(t, func() bool {
		return notifier.ShortfallCount() >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestQuotaScanner_DisabledDoesNotRun(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.SaveSettings(context.Background(), roster.DefaultSettings()))

	engine := roster.NewEngine(mem, mem, mem, roster.NopNotifier{})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	scanner := api.NewQuotaScanner(engine, mem, log)
	scanner.Enabled = false
	scanner.Start()
	scanner.Stop() // must not block or panic when never started
}

func TestQuotaScanner_StopIsIdempotent(t *testing.T) {
	// GIVEN: A started scanner
	// WHEN: Stop is called twice
	// THEN: The second call returns without panicking

	mem := store.NewMemory()
	require.NoError(t, mem.SaveSettings(context.Background(), roster.DefaultSettings()))

	engine := roster.NewEngine(mem, mem, mem, roster.NopNotifier{})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	scanner := api.NewQuotaScanner(engine, mem, log)
	scanner.CheckInterval = time.Hour
	scanner.Start()
	scanner.Stop()
	scanner.Stop()
}
