package stereosync

import (
	"time"

	"github.com/bft-labs/stereosync/internal/app"
	"github.com/bft-labs/stereosync/internal/domain"
)

// State is the lifecycle state of a Sync instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

// RestartEvent describes one triggered driver restart.
type RestartEvent = domain.RestartEvent

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
	At       time.Time
}

// EventHandler receives notifications from a running Sync.
// Calls are synchronous; implementations should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnRestart(event RestartEvent)
}

// BaseEventHandler provides no-op implementations of every EventHandler
// method. Embed it to override only what you need.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// OnRestart does nothing.
func (BaseEventHandler) OnRestart(RestartEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: State(previous),
		Current:  State(current),
		Reason:   reason,
		At:       time.Now(),
	})
}

func (e *eventEmitterWrapper) OnRestart(event domain.RestartEvent) {
	if e.handler == nil {
		return
	}
	e.handler.OnRestart(event)
}
