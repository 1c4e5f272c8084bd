package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/stereosync/internal/app"
	"github.com/bft-labs/stereosync/internal/domain"
)

// Default values for the stock stereo rig.
const (
	DefaultCamera        = "/stereo_down"
	DefaultDriver        = "stereo_down"
	DefaultNodeName      = "stereo_sync"
	DefaultKillCommand   = "rosnode kill {node}"
	DefaultLaunchCommand = "roslaunch turbot avt_vimba_camera.launch"
	DefaultSubEndpoint   = "tcp://127.0.0.1:5555"
	DefaultPubEndpoint   = "tcp://*:5556"
	DefaultInfoAddr      = ":8090"
)

// Config holds CLI configuration for stereosync.
type Config struct {
	Camera   string
	Driver   string
	NodeName string

	DesiredFrequency float64
	StaleMultiplier  float64
	SyncTolerance    time.Duration
	ResetWait        time.Duration
	RestartDelay     time.Duration
	QueueSize        int

	KillCommand   string
	LaunchCommand string

	SubEndpoint string
	PubEndpoint string
	InfoAddr    string

	StateDir     string
	LogLevel     string
	WarnThrottle time.Duration
	LogEvery     int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Camera:           DefaultCamera,
		Driver:           DefaultDriver,
		NodeName:         DefaultNodeName,
		DesiredFrequency: 7.5,
		StaleMultiplier:  40,
		SyncTolerance:    100 * time.Millisecond,
		ResetWait:        20 * time.Second,
		RestartDelay:     5 * time.Second,
		QueueSize:        5,
		KillCommand:      DefaultKillCommand,
		LaunchCommand:    DefaultLaunchCommand,
		SubEndpoint:      DefaultSubEndpoint,
		PubEndpoint:      DefaultPubEndpoint,
		InfoAddr:         DefaultInfoAddr,
		StateDir:         "", // Derived from $HOME during Validate
		LogLevel:         "info",
		LogEvery:         100,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Camera == "" {
		return invalid("camera is required")
	}
	if !strings.HasPrefix(c.Camera, "/") {
		c.Camera = "/" + c.Camera
	}
	c.Camera = strings.TrimSuffix(c.Camera, "/")

	if c.Driver == "" {
		return invalid("driver is required")
	}
	if c.NodeName == "" {
		c.NodeName = DefaultNodeName
	}

	if err := app.CheckRate(c.DesiredFrequency, c.StaleMultiplier); err != nil {
		return err
	}
	if c.SyncTolerance <= 0 {
		return invalid("sync tolerance must be positive")
	}
	if c.ResetWait <= 0 {
		return invalid("reset wait must be positive")
	}
	if c.RestartDelay < 0 {
		return invalid("restart delay must not be negative")
	}
	if c.QueueSize <= 0 {
		return invalid("queue size must be positive")
	}

	if c.KillCommand == "" {
		c.KillCommand = DefaultKillCommand
	}
	if c.LaunchCommand == "" {
		c.LaunchCommand = DefaultLaunchCommand
	}

	if c.SubEndpoint == "" {
		return invalid("sub endpoint is required")
	}
	if c.PubEndpoint == "" {
		return invalid("pub endpoint is required")
	}

	if c.StateDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(h, ".stereosync")
		} else {
			c.StateDir = ".stereosync"
		}
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid(fmt.Sprintf("log level %q", c.LogLevel))
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}
