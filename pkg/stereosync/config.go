package stereosync

import (
	"fmt"
	"time"

	"github.com/bft-labs/stereosync/internal/app"
	"github.com/bft-labs/stereosync/internal/correlator"
	"github.com/bft-labs/stereosync/internal/domain"
)

// Config holds the configuration of a sync node.
// Use DefaultConfig() or call SetDefaults() on a partial Config.
type Config struct {
	// Camera is the camera namespace, e.g. "/stereo_down". Raw input is read
	// from "<Camera>_unsync/..." and synchronized pairs go to "<Camera>/...".
	Camera string

	// Driver is the name of the camera driver process to restart.
	Driver string

	// NodeName prefixes the info topic ("<NodeName>/info").
	NodeName string

	// SyncTolerance is the maximum left/right stamp difference of a pair.
	// Default: 100ms
	SyncTolerance time.Duration

	// DesiredFrequency is the expected pair rate in Hz.
	// Default: 7.5
	DesiredFrequency float64

	// StaleMultiplier is how many frame periods may pass without a pair
	// before the driver is restarted. Default: 40
	StaleMultiplier float64

	// ResetWait is the cooldown after a restart. Default: 20s
	ResetWait time.Duration

	// RestartDelay is the pause after stopping and after relaunching the
	// driver. Default: 5s
	RestartDelay time.Duration

	// QueueSize bounds each correlator input queue. Default: 5
	QueueSize int

	// KillCommand and LaunchCommand are shell templates; {node} expands to
	// Driver and {camera} to Camera.
	KillCommand   string
	LaunchCommand string

	// SubEndpoint is the ZeroMQ endpoint the driver publishes on.
	SubEndpoint string

	// PubEndpoint is where synchronized pairs are published.
	PubEndpoint string

	// InfoAddr is the listen address of the info HTTP server.
	// Empty disables it.
	InfoAddr string

	// StateDir holds status.json. Empty disables the status file.
	StateDir string

	// ConfigPath is the file the configuration was loaded from, if any.
	// Passed to plugins.
	ConfigPath string

	// WarnThrottle limits repeated warnings to one per interval.
	// Zero disables throttling.
	WarnThrottle time.Duration

	// LogEvery logs every Nth received message at debug level.
	LogEvery int
}

// DefaultConfig returns a Config with the stock stereo rig settings.
func DefaultConfig() Config {
	cfg := Config{
		Camera:   "/stereo_down",
		Driver:   "stereo_down",
		NodeName: "stereo_sync",
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.SyncTolerance == 0 {
		c.SyncTolerance = app.DefaultSyncTolerance
	}
	if c.DesiredFrequency == 0 {
		c.DesiredFrequency = app.DefaultDesiredFrequency
	}
	if c.StaleMultiplier == 0 {
		c.StaleMultiplier = app.DefaultStaleMultiplier
	}
	if c.ResetWait == 0 {
		c.ResetWait = app.DefaultResetWait
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = app.DefaultRestartDelay
	}
	if c.QueueSize == 0 {
		c.QueueSize = correlator.DefaultQueueSize
	}
	if c.NodeName == "" {
		c.NodeName = "stereo_sync"
	}
	if c.SubEndpoint == "" {
		c.SubEndpoint = "tcp://127.0.0.1:5555"
	}
	if c.PubEndpoint == "" {
		c.PubEndpoint = "tcp://*:5556"
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	switch {
	case c.Camera == "":
		return fmt.Errorf("%w: camera is required", domain.ErrInvalidConfig)
	case c.Driver == "":
		return fmt.Errorf("%w: driver is required", domain.ErrInvalidConfig)
	case c.SyncTolerance < 0:
		return fmt.Errorf("%w: sync tolerance must be positive", domain.ErrInvalidConfig)
	case c.DesiredFrequency < 0:
		return fmt.Errorf("%w: desired frequency must be positive", domain.ErrInvalidConfig)
	case c.StaleMultiplier < 0:
		return fmt.Errorf("%w: stale multiplier must be positive", domain.ErrInvalidConfig)
	case c.ResetWait < 0:
		return fmt.Errorf("%w: reset wait must be positive", domain.ErrInvalidConfig)
	case c.RestartDelay < 0:
		return fmt.Errorf("%w: restart delay must not be negative", domain.ErrInvalidConfig)
	case c.QueueSize < 0:
		return fmt.Errorf("%w: queue size must be positive", domain.ErrInvalidConfig)
	}

	// Zero rates are filled in by SetDefaults.
	hz, multiplier := c.DesiredFrequency, c.StaleMultiplier
	if hz == 0 {
		hz = app.DefaultDesiredFrequency
	}
	if multiplier == 0 {
		multiplier = app.DefaultStaleMultiplier
	}
	return app.CheckRate(hz, multiplier)
}

func (c Config) nodeConfig() app.NodeConfig {
	nc := app.DefaultNodeConfig()
	nc.SyncTolerance = c.SyncTolerance
	nc.DesiredFrequency = c.DesiredFrequency
	nc.StaleMultiplier = c.StaleMultiplier
	nc.ResetWait = c.ResetWait
	nc.RestartDelay = c.RestartDelay
	nc.Driver = c.Driver
	nc.Correlator.QueueSize = c.QueueSize
	return nc
}
