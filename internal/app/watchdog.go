package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

// Default watchdog configuration values.
const (
	DefaultDesiredFrequency = 7.5
	DefaultStaleMultiplier  = 40.0
	DefaultResetWait        = 20 * time.Second
)

// WatchdogConfig contains the timing of the staleness check.
type WatchdogConfig struct {
	// Period is the interval between ticks.
	Period time.Duration

	// StaleAfter is the staleness above which recovery triggers.
	StaleAfter time.Duration

	// ResetWait is the cooldown after a triggered recovery.
	ResetWait time.Duration
}

// CheckRate reports whether desiredHz and multiplier give a usable watchdog:
// both finite and positive, with a period of at least one nanosecond.
func CheckRate(desiredHz, multiplier float64) error {
	switch {
	case !positiveFinite(desiredHz):
		return fmt.Errorf("%w: desired frequency must be a positive number", domain.ErrInvalidConfig)
	case seconds(1/desiredHz) < time.Nanosecond:
		return fmt.Errorf("%w: desired frequency %g Hz is too high", domain.ErrInvalidConfig, desiredHz)
	case !positiveFinite(multiplier):
		return fmt.Errorf("%w: stale multiplier must be a positive number", domain.ErrInvalidConfig)
	}
	return nil
}

// WatchdogConfigFor derives the watchdog timing from the expected frame rate.
// The period is one frame and the threshold is multiplier frames. Unusable
// values fall back to the defaults and the period is at least 1ns.
func WatchdogConfigFor(desiredHz, multiplier float64, resetWait time.Duration) WatchdogConfig {
	if !positiveFinite(desiredHz) {
		desiredHz = DefaultDesiredFrequency
	}
	if !positiveFinite(multiplier) {
		multiplier = DefaultStaleMultiplier
	}
	cfg := WatchdogConfig{
		Period:     seconds(1 / desiredHz),
		StaleAfter: seconds(multiplier / desiredHz),
		ResetWait:  resetWait,
	}
	if cfg.Period < time.Nanosecond {
		cfg.Period = time.Nanosecond
	}
	return cfg
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// seconds converts s to a Duration, saturating instead of overflowing.
func seconds(s float64) time.Duration {
	ns := s * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Watchdog periodically checks that synchronized pairs keep flowing.
type Watchdog struct {
	cfg      WatchdogConfig
	state    *syncState
	logical  timeutil.Clock
	recovery *RecoveryController
	logger   ports.Logger

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

func newWatchdog(
	cfg WatchdogConfig,
	state *syncState,
	logical timeutil.Clock,
	recovery *RecoveryController,
	logger ports.Logger,
) *Watchdog {
	return &Watchdog{
		cfg:      cfg,
		state:    state,
		logical:  logical,
		recovery: recovery,
		logger:   logger,
	}
}

// Run fires Tick every period until ctx is canceled. Each firing runs on
// its own goroutine; Run waits for in-flight ticks before returning.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := w.logical.NewTicker(w.cfg.Period)
	defer ticker.Stop()
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.Tick(ctx)
			}()
		}
	}
}

// Tick performs one staleness check. It returns false without doing
// anything when another tick is still running.
func (w *Watchdog) Tick(ctx context.Context) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer w.inFlight.Store(false)

	now := w.logical.Now()
	v := w.state.Evaluate(now, w.cfg.ResetWait, w.cfg.StaleAfter)
	if v.Rearmed {
		w.logger.Debug("reset cooldown elapsed")
	}
	if !v.Stalled {
		return true
	}

	w.recovery.Trigger(ctx, now, v.Staleness)
	return true
}

// Busy reports whether a tick is currently running.
func (w *Watchdog) Busy() bool { return w.inFlight.Load() }

// Config returns the watchdog timing.
func (w *Watchdog) Config() WatchdogConfig { return w.cfg }
