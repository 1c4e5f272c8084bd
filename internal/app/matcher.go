package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

// DefaultSyncTolerance is the maximum left/right stamp difference of a pair.
const DefaultSyncTolerance = 100 * time.Millisecond

// Matcher validates correlated frame sets, re-stamps the good ones and
// republishes them as synchronized pairs.
type Matcher struct {
	tolerance time.Duration
	wall      timeutil.Clock
	logical   timeutil.Clock
	state     *syncState
	publisher ports.PairPublisher
	logger    ports.Logger

	matched    atomic.Uint64
	mismatched atomic.Uint64
}

// newMatcher creates a matcher that records successes in state.
func newMatcher(
	tolerance time.Duration,
	wall, logical timeutil.Clock,
	state *syncState,
	publisher ports.PairPublisher,
	logger ports.Logger,
) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultSyncTolerance
	}
	return &Matcher{
		tolerance: tolerance,
		wall:      wall,
		logical:   logical,
		state:     state,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle processes one frame set. It returns an error wrapping
// domain.ErrTimestampMismatch when the set is dropped.
func (m *Matcher) Handle(ctx context.Context, set domain.FrameSet) error {
	timeError := set.TimeError()
	if timeError > m.tolerance {
		m.mismatched.Add(1)
		m.logger.Warn("left and right images not properly synced",
			ports.Seconds("error_s", timeError),
			ports.Duration("tolerance", m.tolerance),
		)
		return fmt.Errorf("time error %s: %w", timeError, domain.ErrTimestampMismatch)
	}

	stamp := m.wall.Now()
	pair := set.Restamp(stamp)
	if err := m.publisher.PublishPair(ctx, pair); err != nil {
		m.logger.Error("publish synced pair", ports.Err(err))
	}
	m.matched.Add(1)

	if m.state.RecordSuccess(stamp, m.logical.Now()) {
		m.logger.Info("initialized")
	}
	return nil
}

// Matched returns the number of pairs republished.
func (m *Matcher) Matched() uint64 { return m.matched.Load() }

// Mismatched returns the number of sets dropped for exceeding the tolerance.
func (m *Matcher) Mismatched() uint64 { return m.mismatched.Load() }
