package app

import (
	"sync"
	"time"
)

// Liveness is a snapshot of the last successful synchronization.
type Liveness struct {
	Initialized     bool
	LastWallSync    time.Time
	LastLogicalSync time.Time
}

// Recovery is a snapshot of the restart cooldown.
type Recovery struct {
	Resetting  bool
	ResetStart time.Time
}

// Verdict is the outcome of evaluating the sync state at one instant.
type Verdict struct {
	// Stalled is true when recovery must be triggered now.
	Stalled bool

	// Rearmed is true when this evaluation ended a cooldown.
	Rearmed bool

	// CoolingDown is true while a previous restart suppresses triggers.
	CoolingDown bool

	// Staleness is the time since the last synchronized pair.
	// Zero when the state was never initialized.
	Staleness time.Duration
}

// syncState holds liveness and recovery state shared by the pair matcher
// and the watchdog. All access goes through its methods.
type syncState struct {
	mu sync.Mutex

	initialized bool
	lastWall    time.Time
	lastLogical time.Time

	resetting  bool
	resetStart time.Time
}

func newSyncState() *syncState {
	return &syncState{}
}

// RecordSuccess stores the times of a successful pairing.
// Times never move backwards. Returns true on the uninitialized to
// initialized transition.
func (s *syncState) RecordSuccess(wall, logical time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wall.After(s.lastWall) {
		s.lastWall = wall
	}
	if logical.After(s.lastLogical) {
		s.lastLogical = logical
	}

	first := !s.initialized
	s.initialized = true
	return first
}

// Evaluate decides what the watchdog must do at logical time now.
// An expired cooldown is cleared even while uninitialized; staleness is
// only judged once a pair has been seen.
func (s *syncState) Evaluate(now time.Time, resetWait, staleAfter time.Duration) Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v Verdict
	if s.resetting {
		if now.Sub(s.resetStart) < resetWait {
			v.CoolingDown = true
			return v
		}
		s.resetting = false
		v.Rearmed = true
	}

	if !s.initialized {
		return v
	}

	v.Staleness = now.Sub(s.lastLogical)
	v.Stalled = v.Staleness > staleAfter
	return v
}

// CompleteRecovery enters the cooldown that started at logical time now
// and forces re-initialization on the next successful pair.
func (s *syncState) CompleteRecovery(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = false
	s.resetting = true
	s.resetStart = now
}

// Snapshot returns a consistent copy of both halves of the state.
func (s *syncState) Snapshot() (Liveness, Recovery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Liveness{
			Initialized:     s.initialized,
			LastWallSync:    s.lastWall,
			LastLogicalSync: s.lastLogical,
		}, Recovery{
			Resetting:  s.resetting,
			ResetStart: s.resetStart,
		}
}
