/*
scheduler.go - Automated trimester close

PURPOSE:
  Periodically banks carryover once a trimester is over, so balances in the
  new trimester read a persisted pto_history row instead of recomputing it.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - On each tick, finds the trimester before the one containing today
  - Closes it for every employee who has no history row for the current
    trimester yet; rows that exist (earlier runs, manual closes) are kept
  - An interval of zero disables the scheduler

USAGE:
  closer := NewTrimesterCloser(store, accrual, logger)
  closer.Start()
  // ... later
  closer.Stop()

SEE ALSO:
  - handlers.go: CloseTrimester endpoint (manual close)
  - timeoff/accrual.go: CloseTrimester
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// TrimesterCloser handles automated trimester close.
type TrimesterCloser struct {
	Store         timeoff.Store
	Accrual       *timeoff.AccrualService
	CheckInterval time.Duration

	logger logrus.FieldLogger
	today  func() generic.Date

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTrimesterCloser creates a closer that checks hourly.
func NewTrimesterCloser(store timeoff.Store, accrual *timeoff.AccrualService, logger logrus.FieldLogger) *TrimesterCloser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TrimesterCloser{
		Store:         store,
		Accrual:       accrual,
		CheckInterval: time.Hour,
		logger:        logger.WithField("component", "trimester-closer"),
		today:         generic.Today,
	}
}

// Start begins the scheduler.
func (tc *TrimesterCloser) Start() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.CheckInterval <= 0 {
		tc.logger.Info("Disabled, not starting")
		return
	}
	if tc.ticker != nil {
		return
	}

	tc.ticker = time.NewTicker(tc.CheckInterval)
	tc.stop = make(chan struct{})
	tc.wg.Add(1)

	go tc.run()

	tc.logger.WithField("interval", tc.CheckInterval).Info("Started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (tc *TrimesterCloser) Stop() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.ticker != nil {
		tc.ticker.Stop()
		close(tc.stop)
		tc.wg.Wait()
		tc.ticker = nil
		tc.logger.Info("Stopped")
	}
}

func (tc *TrimesterCloser) run() {
	defer tc.wg.Done()

	// Run immediately on start
	tc.check()

	for {
		select {
		case <-tc.ticker.C:
			tc.check()
		case <-tc.stop:
			return
		}
	}
}

func (tc *TrimesterCloser) check() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-tc.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := tc.CloseDue(ctx); err != nil {
		tc.logger.WithError(err).Error("Trimester close failed")
	}
}

// CloseDue closes the previous trimester for every employee without a
// history row for the current one. It returns the rows written.
func (tc *TrimesterCloser) CloseDue(ctx context.Context) ([]timeoff.HistoryRecord, error) {
	current := generic.TrimesterFor(tc.today())
	previous := generic.Trimesters.Previous(current)

	employees, err := tc.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	var closed []timeoff.HistoryRecord
	for _, emp := range employees {
		existing, err := tc.Store.GetHistory(ctx, emp.ID, current.Start)
		if err != nil {
			return closed, err
		}
		if existing != nil {
			continue
		}
		rec, err := tc.Accrual.CloseTrimester(ctx, emp.ID, previous.Start)
		if err != nil {
			return closed, err
		}
		closed = append(closed, rec)
	}

	if len(closed) > 0 {
		tc.logger.WithFields(logrus.Fields{
			"trimester": generic.TrimesterLabel(previous),
			"employees": len(closed),
		}).Info("Closed trimester")
	}
	return closed, nil
}
