package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (STEREOSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("camera", os.Getenv("STEREOSYNC_CAMERA"), &cfg.Camera)
	s.setString("driver", os.Getenv("STEREOSYNC_DRIVER"), &cfg.Driver)
	s.setString("node-name", os.Getenv("STEREOSYNC_NODE_NAME"), &cfg.NodeName)
	s.setString("kill-command", os.Getenv("STEREOSYNC_KILL_COMMAND"), &cfg.KillCommand)
	s.setString("launch-command", os.Getenv("STEREOSYNC_LAUNCH_COMMAND"), &cfg.LaunchCommand)
	s.setString("sub-endpoint", os.Getenv("STEREOSYNC_SUB_ENDPOINT"), &cfg.SubEndpoint)
	s.setString("pub-endpoint", os.Getenv("STEREOSYNC_PUB_ENDPOINT"), &cfg.PubEndpoint)
	s.setString("info-addr", os.Getenv("STEREOSYNC_INFO_ADDR"), &cfg.InfoAddr)
	s.setString("state-dir", os.Getenv("STEREOSYNC_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("STEREOSYNC_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("sync-tolerance", os.Getenv("STEREOSYNC_SYNC_TOLERANCE"), &cfg.SyncTolerance); err != nil {
		return err
	}
	if err := s.setDuration("reset-wait", os.Getenv("STEREOSYNC_RESET_WAIT"), &cfg.ResetWait); err != nil {
		return err
	}
	if err := s.setDuration("restart-delay", os.Getenv("STEREOSYNC_RESTART_DELAY"), &cfg.RestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("warn-throttle", os.Getenv("STEREOSYNC_WARN_THROTTLE"), &cfg.WarnThrottle); err != nil {
		return err
	}

	if err := s.setFloatFromString("desired-freq", os.Getenv("STEREOSYNC_DESIRED_FREQ"), &cfg.DesiredFrequency); err != nil {
		return err
	}
	if err := s.setFloatFromString("stale-multiplier", os.Getenv("STEREOSYNC_STALE_MULTIPLIER"), &cfg.StaleMultiplier); err != nil {
		return err
	}

	if err := s.setIntFromString("queue-size", os.Getenv("STEREOSYNC_QUEUE_SIZE"), &cfg.QueueSize); err != nil {
		return err
	}
	if err := s.setIntFromString("log-every", os.Getenv("STEREOSYNC_LOG_EVERY"), &cfg.LogEvery); err != nil {
		return err
	}

	return nil
}
