package ports

import "context"

// DriverController stops and starts the upstream camera driver process.
// Both calls are fire-and-forget: a nil error only means the command was
// issued, not that the driver is healthy.
type DriverController interface {
	// Stop terminates the driver process.
	Stop(ctx context.Context) error

	// Start relaunches the driver process in the background.
	Start(ctx context.Context) error
}
