package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

type matcherFixture struct {
	wall      *timeutil.MockClock
	logical   *timeutil.MockClock
	state     *syncState
	publisher *mockPublisher
	logger    *recordingLogger
	matcher   *Matcher
}

func newMatcherFixture() *matcherFixture {
	f := &matcherFixture{
		wall:      timeutil.NewMockClock(epoch.Add(time.Hour)),
		logical:   timeutil.NewMockClock(epoch),
		state:     newSyncState(),
		publisher: &mockPublisher{},
		logger:    &recordingLogger{},
	}
	f.matcher = newMatcher(100*time.Millisecond, f.wall, f.logical, f.state, f.publisher, f.logger)
	return f
}

func TestMatcher_PublishesWithinTolerance(t *testing.T) {
	f := newMatcherFixture()

	if err := f.matcher.Handle(context.Background(), frameSet(0, 40*time.Millisecond)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	pairs := f.publisher.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("published %d pairs, want 1", len(pairs))
	}
	if !pairs[0].Coherent() {
		t.Error("published pair has mixed stamps")
	}
	if !pairs[0].Stamp().Equal(f.wall.Now()) {
		t.Errorf("pair stamp = %v, want wall now %v", pairs[0].Stamp(), f.wall.Now())
	}

	live, _ := f.state.Snapshot()
	if !live.Initialized {
		t.Error("state not initialized")
	}
	if !live.LastWallSync.Equal(f.wall.Now()) {
		t.Errorf("LastWallSync = %v, want %v", live.LastWallSync, f.wall.Now())
	}
	if !live.LastLogicalSync.Equal(f.logical.Now()) {
		t.Errorf("LastLogicalSync = %v, want %v", live.LastLogicalSync, f.logical.Now())
	}
	if f.matcher.Matched() != 1 {
		t.Errorf("Matched() = %d, want 1", f.matcher.Matched())
	}
}

func TestMatcher_Tolerance(t *testing.T) {
	tests := []struct {
		name    string
		right   time.Duration
		wantErr bool
	}{
		{"aligned", 0, false},
		{"exactly tolerance", 100 * time.Millisecond, false},
		{"just over", 101 * time.Millisecond, true},
		{"negative offset over", -150 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMatcherFixture()
			err := f.matcher.Handle(context.Background(), frameSet(0, tt.right))

			if tt.wantErr {
				if !errors.Is(err, domain.ErrTimestampMismatch) {
					t.Fatalf("Handle() error = %v, want ErrTimestampMismatch", err)
				}
				if n := len(f.publisher.Pairs()); n != 0 {
					t.Errorf("published %d pairs for a mismatched set", n)
				}
				live, _ := f.state.Snapshot()
				if live.Initialized || !live.LastLogicalSync.IsZero() {
					t.Error("mismatched set updated liveness")
				}
				if f.logger.count("warn", "left and right images not properly synced") != 1 {
					t.Error("mismatch warning not logged")
				}
				return
			}
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
		})
	}
}

func TestMatcher_LogsInitializedOnce(t *testing.T) {
	f := newMatcherFixture()
	for i := 0; i < 3; i++ {
		f.logical.Advance(time.Second)
		if err := f.matcher.Handle(context.Background(), frameSet(0, 0)); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	if n := f.logger.count("info", "initialized"); n != 1 {
		t.Errorf("initialized logged %d times, want 1", n)
	}

	// A recovery forces re-initialization.
	f.state.CompleteRecovery(f.logical.Now())
	_ = f.matcher.Handle(context.Background(), frameSet(0, 0))
	if n := f.logger.count("info", "initialized"); n != 2 {
		t.Errorf("initialized logged %d times after recovery, want 2", n)
	}
}

func TestMatcher_PublishErrorStillRecordsLiveness(t *testing.T) {
	f := newMatcherFixture()
	f.publisher.err = errors.New("socket closed")

	if err := f.matcher.Handle(context.Background(), frameSet(0, 0)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	live, _ := f.state.Snapshot()
	if !live.Initialized {
		t.Error("publish error prevented liveness update")
	}
	if f.logger.count("error", "publish synced pair") != 1 {
		t.Error("publish error not logged")
	}
}
