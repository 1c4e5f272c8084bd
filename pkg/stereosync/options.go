package stereosync

import (
	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
	"github.com/bft-labs/stereosync/pkg/log"
)

// Re-exported types so embedders can implement the ports.
type (
	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Clock abstracts time for the watchdog and restart delays.
	Clock = timeutil.Clock

	Image      = domain.Image
	CameraInfo = domain.CameraInfo
	SyncedPair = domain.SyncedPair

	MessageSink      = ports.MessageSink
	MessageSource    = ports.MessageSource
	PairPublisher    = ports.PairPublisher
	InfoPublisher    = ports.InfoPublisher
	DriverController = ports.DriverController
	StatusRepository = ports.StatusRepository
)

// Option configures optional behavior of Sync.
type Option func(*options)

// options holds the optional configuration for a Sync instance.
type options struct {
	logger       Logger
	eventHandler EventHandler
	plugins      []Plugin

	source    MessageSource
	publisher PairPublisher
	info      []InfoPublisher
	driver    DriverController
	status    StatusRepository

	wall    Clock
	logical Clock
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for lifecycle and restart events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when Sync starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithMessageSource replaces the ZeroMQ subscriber.
func WithMessageSource(src MessageSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithPairPublisher replaces the ZeroMQ publisher for synchronized pairs.
// Info messages still go to the WebSocket hub and any WithInfoPublisher sinks.
func WithPairPublisher(pub PairPublisher) Option {
	return func(o *options) {
		o.publisher = pub
	}
}

// WithInfoPublisher adds a sink for diagnostic messages.
func WithInfoPublisher(info InfoPublisher) Option {
	return func(o *options) {
		o.info = append(o.info, info)
	}
}

// WithDriverController replaces the shell-based driver restart.
func WithDriverController(driver DriverController) Option {
	return func(o *options) {
		o.driver = driver
	}
}

// WithStatusRepository replaces the status.json repository.
func WithStatusRepository(repo StatusRepository) Option {
	return func(o *options) {
		o.status = repo
	}
}

// WithClocks sets the wall and logical clocks. A nil logical clock
// follows the wall clock.
func WithClocks(wall, logical Clock) Option {
	return func(o *options) {
		o.wall = wall
		o.logical = logical
	}
}
