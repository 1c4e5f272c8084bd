// Package log contains logger decorators used by the sync node.
package log

import (
	"sync"
	"time"

	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

// Throttled forwards to an inner logger but emits each distinct warning
// message at most once per interval. Suppressed repeats are counted and
// reported on the next emitted occurrence. Debug, Info and Error pass
// through unchanged.
type Throttled struct {
	inner    ports.Logger
	clock    timeutil.Clock
	interval time.Duration

	mu   sync.Mutex
	seen map[string]*throttleEntry
}

type throttleEntry struct {
	last       time.Time
	suppressed int
}

// NewThrottled wraps inner. An interval <= 0 disables throttling.
func NewThrottled(inner ports.Logger, clock timeutil.Clock, interval time.Duration) *Throttled {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Throttled{
		inner:    inner,
		clock:    clock,
		interval: interval,
		seen:     make(map[string]*throttleEntry),
	}
}

// Debug forwards the message.
func (t *Throttled) Debug(msg string, fields ...ports.Field) { t.inner.Debug(msg, fields...) }

// Info forwards the message.
func (t *Throttled) Info(msg string, fields ...ports.Field) { t.inner.Info(msg, fields...) }

// Error forwards the message.
func (t *Throttled) Error(msg string, fields ...ports.Field) { t.inner.Error(msg, fields...) }

// Warn forwards the message unless the same message was emitted within the interval.
func (t *Throttled) Warn(msg string, fields ...ports.Field) {
	if t.interval <= 0 {
		t.inner.Warn(msg, fields...)
		return
	}

	now := t.clock.Now()
	t.mu.Lock()
	e, ok := t.seen[msg]
	if ok && now.Sub(e.last) < t.interval {
		e.suppressed++
		t.mu.Unlock()
		return
	}
	if !ok {
		e = &throttleEntry{}
		t.seen[msg] = e
	}
	suppressed := e.suppressed
	e.last = now
	e.suppressed = 0
	t.mu.Unlock()

	if suppressed > 0 {
		fields = append(fields, ports.Int("suppressed", suppressed))
	}
	t.inner.Warn(msg, fields...)
}
