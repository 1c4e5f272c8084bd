package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Camera           string  `toml:"camera"`
	Driver           string  `toml:"driver"`
	NodeName         string  `toml:"node_name"`
	DesiredFrequency float64 `toml:"desired_frequency"`
	StaleMultiplier  float64 `toml:"stale_multiplier"`
	SyncTolerance    string  `toml:"sync_tolerance"`
	ResetWait        string  `toml:"reset_wait"`
	RestartDelay     string  `toml:"restart_delay"`
	QueueSize        int     `toml:"queue_size"`
	KillCommand      string  `toml:"kill_command"`
	LaunchCommand    string  `toml:"launch_command"`
	SubEndpoint      string  `toml:"sub_endpoint"`
	PubEndpoint      string  `toml:"pub_endpoint"`
	InfoAddr         string  `toml:"info_addr"`
	StateDir         string  `toml:"state_dir"`
	LogLevel         string  `toml:"log_level"`
	WarnThrottle     string  `toml:"warn_throttle"`
	LogEvery         int     `toml:"log_every"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.stereosync/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".stereosync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("camera", fc.Camera, &cfg.Camera)
	s.setString("driver", fc.Driver, &cfg.Driver)
	s.setString("node-name", fc.NodeName, &cfg.NodeName)
	s.setString("kill-command", fc.KillCommand, &cfg.KillCommand)
	s.setString("launch-command", fc.LaunchCommand, &cfg.LaunchCommand)
	s.setString("sub-endpoint", fc.SubEndpoint, &cfg.SubEndpoint)
	s.setString("pub-endpoint", fc.PubEndpoint, &cfg.PubEndpoint)
	s.setString("info-addr", fc.InfoAddr, &cfg.InfoAddr)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("sync-tolerance", fc.SyncTolerance, &cfg.SyncTolerance); err != nil {
		return err
	}
	if err := s.setDuration("reset-wait", fc.ResetWait, &cfg.ResetWait); err != nil {
		return err
	}
	if err := s.setDuration("restart-delay", fc.RestartDelay, &cfg.RestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("warn-throttle", fc.WarnThrottle, &cfg.WarnThrottle); err != nil {
		return err
	}

	s.setFloat("desired-freq", fc.DesiredFrequency, &cfg.DesiredFrequency)
	s.setFloat("stale-multiplier", fc.StaleMultiplier, &cfg.StaleMultiplier)

	s.setInt("queue-size", fc.QueueSize, &cfg.QueueSize)
	s.setInt("log-every", fc.LogEvery, &cfg.LogEvery)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
