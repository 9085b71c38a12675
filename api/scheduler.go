/*
scheduler.go - Quota shortfall scanner

PURPOSE:
  Periodically recomputes monthly off-day stats for every driver and
  lets the engine notify drivers still below the monthly minimum once
  the notification day of the month has passed.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each sweep walks the driver directory and projects the current
    month's stats through the engine
  - The engine owns the shortfall notification itself; the scanner
    only drives the recomputation and logs a sweep summary

USAGE:
  scanner := NewQuotaScanner(engine, drivers, log)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - roster/engine.go: GetMonthlyStats and shortfall notification
  - notifier.go: where the events end up
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fleetops/roster-engine/calendar"
	"github.com/fleetops/roster-engine/roster"
)

// QuotaScanner periodically checks every driver's monthly quota.
type QuotaScanner struct {
	Engine        *roster.Engine
	Drivers       roster.DriverDirectory
	Log           *logrus.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewQuotaScanner creates a scanner with a 1 hour default interval.
func NewQuotaScanner(engine *roster.Engine, drivers roster.DriverDirectory, log *logrus.Logger) *QuotaScanner {
	return &QuotaScanner{
		Engine:        engine,
		Drivers:       drivers,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scanner.
func (qs *QuotaScanner) Start() {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if !qs.Enabled {
		qs.Log.Info("quota scanner disabled, not starting")
		return
	}

	qs.ticker = time.NewTicker(qs.CheckInterval)
	qs.wg.Add(1)
	go qs.run()

	qs.Log.WithField("interval", qs.CheckInterval.String()).Info("quota scanner started")
}

// Stop stops the scanner and waits for the current sweep to finish.
// Safe to call when never started, and more than once.
func (qs *QuotaScanner) Stop() {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.ticker == nil {
		return
	}
	qs.ticker.Stop()
	qs.ticker = nil
	close(qs.stop)
	qs.wg.Wait()
	qs.Log.Info("quota scanner stopped")
}

func (qs *QuotaScanner) run() {
	defer qs.wg.Done()

	// Sweep immediately on start
	qs.sweep()

	for {
		select {
		case <-qs.ticker.C:
			qs.sweep()
		case <-qs.stop:
			return
		}
	}
}

// sweep recomputes the current month's stats for every driver.
func (qs *QuotaScanner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	today := calendar.Today()
	drivers, err := qs.Drivers.ListDrivers(ctx)
	if err != nil {
		qs.Log.WithError(err).Error("quota sweep failed to list drivers")
		return
	}

	var shortfalls int
	for _, d := range drivers {
		stats, err := qs.Engine.GetMonthlyStats(ctx, d.ID, today.Year, today.Month)
		if err != nil {
			qs.Log.WithError(err).WithField("driver_id", d.ID).Warn("quota sweep skipped driver")
			continue
		}
		if stats.RemainingRequired > 0 {
			shortfalls++
		}
	}

	qs.Log.WithFields(logrus.Fields{
		"drivers":    len(drivers),
		"shortfalls": shortfalls,
	}).Info("quota sweep complete")
}
