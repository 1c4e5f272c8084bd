package stereosync

import "context"

// Plugin extends a Sync instance with optional behavior.
// Plugins are initialized in registration order on Start and shut down in
// reverse order on Stop.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. ctx is canceled when the node stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// PluginConfig is the view of the node configuration handed to plugins.
type PluginConfig struct {
	Camera     string
	Driver     string
	NodeName   string
	StateDir   string
	ConfigPath string
	Logger     Logger
}
