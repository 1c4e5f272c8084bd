package domain

import "errors"

// Domain errors represent error conditions in the stereosync domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrTimestampMismatch is returned when left and right images of a
	// FrameSet differ by more than the sync tolerance.
	ErrTimestampMismatch = errors.New("stereosync: left and right images not synced")

	// ErrStreamStalled is reported when no synchronized pair was produced
	// for longer than the staleness threshold.
	ErrStreamStalled = errors.New("stereosync: synchronized stream stalled")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("stereosync: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("stereosync: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("stereosync: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("stereosync: invalid configuration")
)
