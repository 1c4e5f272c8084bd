// Package configwatcher reports changes to the stereosync config file.
// Settings are only read at startup, so the plugin logs a warning when the
// file changes and reports whether the new contents would load.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/stereosync/internal/cliconfig"
	"github.com/bft-labs/stereosync/pkg/log"
	"github.com/bft-labs/stereosync/pkg/stereosync"
)

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// reporting it. Editors often write a file in several steps.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnChange, if set, is called after each debounced change with the
	// result of reloading the file.
	OnChange func(path string, err error)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// Plugin watches the config file of a Sync instance.
type Plugin struct {
	debounceDelay time.Duration
	onChange      func(path string, err error)

	mu       sync.Mutex
	path     string
	logger   stereosync.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		onChange:      cfg.OnChange,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. An empty path disables the plugin.
func (p *Plugin) Initialize(ctx context.Context, cfg stereosync.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Debug("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory; editors replace files by rename.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending report.
func (p *Plugin) Shutdown(context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.scheduleReport(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) scheduleReport(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.report()
	})
}

func (p *Plugin) report() {
	_, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Error("config file changed but does not load",
			log.String("path", p.path),
			log.Err(err))
	} else {
		p.logger.Warn("config file changed; restart required to apply",
			log.String("path", p.path))
	}
	if p.onChange != nil {
		p.onChange(p.path, err)
	}
}
