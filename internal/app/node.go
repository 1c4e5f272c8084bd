package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/stereosync/internal/correlator"
	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

// NodeConfig contains the tunables of a sync node.
type NodeConfig struct {
	// SyncTolerance is the maximum left/right stamp difference of a pair.
	SyncTolerance time.Duration

	// DesiredFrequency is the expected pair rate in Hz.
	DesiredFrequency float64

	// StaleMultiplier is the number of frame periods without a pair
	// before the driver is restarted.
	StaleMultiplier float64

	// ResetWait is the cooldown after a restart.
	ResetWait time.Duration

	// RestartDelay is the pause after stopping and after relaunching the driver.
	RestartDelay time.Duration

	// Driver names the camera driver being supervised.
	Driver string

	// Correlator configures approximate-time matching.
	Correlator correlator.Config
}

// DefaultNodeConfig returns a NodeConfig with the stock camera timing.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		SyncTolerance:    DefaultSyncTolerance,
		DesiredFrequency: DefaultDesiredFrequency,
		StaleMultiplier:  DefaultStaleMultiplier,
		ResetWait:        DefaultResetWait,
		RestartDelay:     DefaultRestartDelay,
		Correlator: correlator.Config{
			QueueSize: correlator.DefaultQueueSize,
			Window:    correlator.DefaultWindow,
			Slop:      correlator.DefaultSlop,
		},
	}
}

// NodeDeps are the ports a Node drives.
type NodeDeps struct {
	Source    ports.MessageSource
	Publisher ports.PairPublisher
	Info      ports.InfoPublisher
	Driver    ports.DriverController
	Status    ports.StatusRepository
	Logger    ports.Logger

	// Wall stamps outgoing pairs and paces driver restarts.
	Wall timeutil.Clock

	// Logical drives staleness and cooldown. It is the same as Wall
	// unless the node runs against simulated time.
	Logical timeutil.Clock

	// Emitter receives restart events. Optional.
	Emitter RestartEventEmitter
}

// NodeSnapshot is a point-in-time view of a running node.
type NodeSnapshot struct {
	Initialized     bool      `json:"initialized"`
	LastWallSync    time.Time `json:"last_wall_sync"`
	LastLogicalSync time.Time `json:"last_logical_sync"`
	Resetting       bool      `json:"resetting"`
	ResetStart      time.Time `json:"reset_start"`
	Matched         uint64    `json:"matched"`
	Mismatched      uint64    `json:"mismatched"`
	Restarts        uint64    `json:"restarts"`
	Delivered       uint64    `json:"correlator_delivered"`
	Rejected        uint64    `json:"correlator_rejected"`
	Overflows       uint64    `json:"correlator_overflows"`
	WatchdogBusy    bool      `json:"watchdog_busy"`
}

// Node wires the correlator, matcher, watchdog and recovery controller
// around one shared sync state.
type Node struct {
	cfg    NodeConfig
	source ports.MessageSource
	wall   timeutil.Clock
	logger ports.Logger

	state      *syncState
	matcher    *Matcher
	recovery   *RecoveryController
	watchdog   *Watchdog
	correlator *correlator.Correlator

	mu     sync.Mutex
	runCtx context.Context
}

// NewNode creates a node. Nil clocks default to the real clock and a nil
// logical clock follows the wall clock.
func NewNode(cfg NodeConfig, deps NodeDeps) (*Node, error) {
	if deps.Source == nil || deps.Publisher == nil || deps.Driver == nil {
		return nil, domain.ErrInvalidConfig
	}
	if deps.Logger == nil {
		return nil, domain.ErrInvalidConfig
	}
	if deps.Wall == nil {
		deps.Wall = timeutil.RealClock{}
	}
	if deps.Logical == nil {
		deps.Logical = deps.Wall
	}

	state := newSyncState()
	n := &Node{
		cfg:    cfg,
		source: deps.Source,
		wall:   deps.Wall,
		logger: deps.Logger,
		state:  state,
	}
	n.matcher = newMatcher(cfg.SyncTolerance, deps.Wall, deps.Logical, state, deps.Publisher, deps.Logger)
	n.recovery = newRecoveryController(cfg.Driver, cfg.RestartDelay, state, deps.Wall,
		deps.Driver, deps.Info, deps.Status, deps.Logger, deps.Emitter)
	n.watchdog = newWatchdog(WatchdogConfigFor(cfg.DesiredFrequency, cfg.StaleMultiplier, cfg.ResetWait),
		state, deps.Logical, n.recovery, deps.Logger)
	n.correlator = correlator.New(cfg.Correlator, n.handleSet)
	return n, nil
}

// Run receives messages and supervises the driver until ctx is canceled.
func (n *Node) Run(ctx context.Context) error {
	n.mu.Lock()
	n.runCtx = ctx
	n.mu.Unlock()

	wd := n.watchdog.Config()
	n.logger.Info("sync node running",
		ports.String("driver", n.cfg.Driver),
		ports.Duration("tolerance", n.matcher.tolerance),
		ports.Duration("watchdog_period", wd.Period),
		ports.Duration("stale_after", wd.StaleAfter),
		ports.Duration("reset_wait", wd.ResetWait),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = n.watchdog.Run(ctx)
	}()

	err := n.runSource(ctx)
	wg.Wait()
	return err
}

// runSource keeps the message source open, reopening it with backoff.
func (n *Node) runSource(ctx context.Context) error {
	b := newBackoff(n.wall, DefaultBackoffInitial, DefaultBackoffMax)
	for {
		opened := n.wall.Now()
		err := n.source.Run(ctx, n.correlator)
		if ctx.Err() != nil {
			return nil
		}
		if n.wall.Since(opened) > DefaultBackoffMax {
			b.Reset()
		}
		if err != nil {
			n.logger.Error("message source failed", ports.Err(err), ports.Duration("retry_in", b.Current()))
		} else {
			n.logger.Warn("message source closed", ports.Duration("retry_in", b.Current()))
		}
		if b.Wait(ctx) != nil {
			return nil
		}
	}
}

func (n *Node) handleSet(set domain.FrameSet) {
	n.mu.Lock()
	ctx := n.runCtx
	n.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	// Mismatches are already logged and counted by the matcher.
	_ = n.matcher.Handle(ctx, set)
}

// Sink returns the message sink the source feeds.
func (n *Node) Sink() ports.MessageSink { return n.correlator }

// Snapshot returns the node's current counters and sync state.
func (n *Node) Snapshot() NodeSnapshot {
	live, rec := n.state.Snapshot()
	st := n.correlator.Stats()
	return NodeSnapshot{
		Initialized:     live.Initialized,
		LastWallSync:    live.LastWallSync,
		LastLogicalSync: live.LastLogicalSync,
		Resetting:       rec.Resetting,
		ResetStart:      rec.ResetStart,
		Matched:         n.matcher.Matched(),
		Mismatched:      n.matcher.Mismatched(),
		Restarts:        n.recovery.Restarts(),
		Delivered:       st.Delivered,
		Rejected:        st.Rejected,
		Overflows:       st.Overflows,
		WatchdogBusy:    n.watchdog.Busy(),
	}
}
