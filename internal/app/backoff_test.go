package app

import (
	"context"
	"testing"
	"time"

	"github.com/bft-labs/stereosync/internal/timeutil"
)

func TestBackoff_DoublesUpToMax(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	b := newBackoff(clock, 100*time.Millisecond, 350*time.Millisecond)

	want := []time.Duration{200, 350, 350}
	for i, w := range want {
		if err := b.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if got := b.Current(); got != w*time.Millisecond {
			t.Errorf("after wait %d Current() = %v, want %v", i, got, w*time.Millisecond)
		}
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 3 {
		t.Fatalf("recorded %d sleeps, want 3", len(sleeps))
	}
	// First sleep is the initial delay +/-20%.
	if sleeps[0] < 80*time.Millisecond || sleeps[0] > 120*time.Millisecond {
		t.Errorf("first sleep = %v, want within jitter of 100ms", sleeps[0])
	}
}

func TestBackoff_Reset(t *testing.T) {
	b := newBackoff(timeutil.NewMockClock(epoch), time.Second, 10*time.Second)
	_ = b.Wait(context.Background())
	_ = b.Wait(context.Background())

	b.Reset()

	if b.Current() != time.Second {
		t.Errorf("Current() = %v after reset, want 1s", b.Current())
	}
}

func TestBackoff_WaitCanceled(t *testing.T) {
	b := newBackoff(timeutil.NewMockClock(epoch), time.Second, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); err == nil {
		t.Error("Wait() on canceled context returned nil")
	}
}
