package configwatcher

import "github.com/bft-labs/stereosync/pkg/stereosync"

// WithConfigWatcher returns a stereosync Option that watches the config
// file named by Config.ConfigPath.
//
// Usage:
//
//	s, err := stereosync.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 250 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) stereosync.Option {
	return stereosync.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns a stereosync Option that enables config
// watching with default settings (debounce 100ms).
func WithDefaultConfigWatcher() stereosync.Option {
	return WithConfigWatcher(DefaultConfig())
}
