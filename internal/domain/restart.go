package domain

import (
	"fmt"
	"time"
)

// RestartEvent records one triggered driver restart.
type RestartEvent struct {
	// ID uniquely identifies the event across process restarts
	ID string `json:"id"`

	// LogicalTime is the logical clock reading when recovery triggered
	LogicalTime time.Time `json:"logical_time"`

	// WallTime is the wall clock reading when recovery triggered
	WallTime time.Time `json:"wall_time"`

	// Staleness is the time since the last synchronized pair
	Staleness time.Duration `json:"staleness"`

	// Driver is the driver process that was restarted
	Driver string `json:"driver"`
}

// Message returns the operator-facing text published on the info channel.
func (e RestartEvent) Message() string {
	return fmt.Sprintf("Resetting camera driver at logical-time %s (wall-time %s).",
		formatSeconds(e.LogicalTime), formatSeconds(e.WallTime))
}

// formatSeconds renders t as fractional unix seconds.
func formatSeconds(t time.Time) string {
	return fmt.Sprintf("%.6fs", float64(t.UnixNano())/1e9)
}

// Status is the persisted summary of restart activity.
type Status struct {
	// Restarts counts every restart triggered since the file was created
	Restarts uint64 `json:"restarts"`

	// LastRestart is the most recent restart, nil if none happened
	LastRestart *RestartEvent `json:"last_restart,omitempty"`

	// UpdatedAt is when the status was last written
	UpdatedAt time.Time `json:"updated_at"`
}

// Record folds a restart event into the status.
func (s *Status) Record(e RestartEvent) {
	s.Restarts++
	ev := e
	s.LastRestart = &ev
	s.UpdatedAt = e.WallTime
}
