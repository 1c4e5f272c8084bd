package stereosync

import (
	"context"
	"fmt"
	"sync"

	execAdapter "github.com/bft-labs/stereosync/internal/adapters/exec"
	"github.com/bft-labs/stereosync/internal/adapters/fs"
	logAdapter "github.com/bft-labs/stereosync/internal/adapters/log"
	"github.com/bft-labs/stereosync/internal/adapters/ws"
	"github.com/bft-labs/stereosync/internal/adapters/zmq"
	"github.com/bft-labs/stereosync/internal/app"
	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/wire"
	"github.com/bft-labs/stereosync/pkg/log"
)

// Snapshot is a point-in-time view of a running node.
type Snapshot = app.NodeSnapshot

// Sync is a stereo pair synchronizer and driver watchdog that can be
// embedded in other applications. Use New() to create an instance, then
// Start() to begin.
type Sync struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	logger    ports.Logger
	emitter   *eventEmitterWrapper

	mu        sync.RWMutex
	node      *app.Node
	hub       *ws.Hub
	zmqPub    *zmq.Publisher
	cancel    context.CancelFunc
	pluginsUp []Plugin
}

// New creates a Sync instance in StateStopped.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Sync, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	return &Sync{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		logger:    o.logger,
		emitter:   emitter,
	}, nil
}

// Start opens the transports and begins synchronizing in the background.
// Returns an error if already running or if startup fails.
// The provided context bounds the lifetime of the node.
func (s *Sync) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lifecycle.SetCancel(cancel)

	node, server, err := s.build()
	if err != nil {
		s.abortStart(err.Error())
		return err
	}
	s.node = node

	if err := s.initPlugins(runCtx); err != nil {
		s.abortStart("plugin init failed")
		return err
	}

	if server != nil {
		s.lifecycle.Go(func() {
			if err := server.Run(runCtx); err != nil {
				s.logger.Error("info server stopped", ports.Err(err))
			}
		})
	}

	s.lifecycle.Go(func() {
		if err := s.lifecycle.TransitionTo(app.StateRunning, "node starting"); err != nil {
			s.logger.Error("failed to transition to running", ports.Err(err))
			return
		}
		if err := node.Run(runCtx); err != nil {
			s.logger.Error("node error", ports.Err(err))
			_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			s.lifecycle.Cancel()
		}
	})
	return nil
}

// build creates the adapters and the node. Caller holds s.mu.
func (s *Sync) build() (*app.Node, *ws.Server, error) {
	cfg := s.config

	codec, err := wire.NewCodec()
	if err != nil {
		return nil, nil, fmt.Errorf("create codec: %w", err)
	}

	s.hub = ws.NewHub(log.Named(s.logger, "info"))
	info := infoFanout{s.hub}
	info = append(info, s.opts.info...)

	publisher := s.opts.publisher
	if publisher == nil {
		pub, err := zmq.NewPublisher(cfg.PubEndpoint, wire.OutputTopics(cfg.Camera), wire.InfoTopic(cfg.NodeName), codec)
		if err != nil {
			return nil, nil, err
		}
		s.zmqPub = pub
		publisher = pub
		info = append(info, pub)
	}

	source := s.opts.source
	if source == nil {
		source = zmq.NewSubscriber(cfg.SubEndpoint, wire.InputTopics(cfg.Camera), codec, log.Named(s.logger, "subscriber"), cfg.LogEvery)
	}

	driver := s.opts.driver
	if driver == nil {
		driver = execAdapter.NewShellController(execAdapter.ShellConfig{
			KillCommand:   cfg.KillCommand,
			LaunchCommand: cfg.LaunchCommand,
			Node:          cfg.Driver,
			Camera:        cfg.Camera,
		}, log.Named(s.logger, "driver"))
	}

	status := s.opts.status
	if status == nil && cfg.StateDir != "" {
		status = fs.NewStatusFileRepository(cfg.StateDir)
	}

	nodeLogger := logAdapter.NewThrottled(log.Named(s.logger, "node"), s.opts.wall, cfg.WarnThrottle)
	node, err := app.NewNode(cfg.nodeConfig(), app.NodeDeps{
		Source:    source,
		Publisher: publisher,
		Info:      info,
		Driver:    driver,
		Status:    status,
		Logger:    nodeLogger,
		Wall:      s.opts.wall,
		Logical:   s.opts.logical,
		Emitter:   s.emitter,
	})
	if err != nil {
		s.closePublisher()
		return nil, nil, err
	}

	var server *ws.Server
	if cfg.InfoAddr != "" {
		server = ws.NewServer(cfg.InfoAddr, s.hub, func() any { return node.Snapshot() }, log.Named(s.logger, "info"))
	}
	return node, server, nil
}

func (s *Sync) initPlugins(ctx context.Context) error {
	pluginCfg := PluginConfig{
		Camera:     s.config.Camera,
		Driver:     s.config.Driver,
		NodeName:   s.config.NodeName,
		StateDir:   s.config.StateDir,
		ConfigPath: s.config.ConfigPath,
		Logger:     s.logger,
	}
	for _, p := range s.opts.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.shutdownPlugins(context.Background())
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		s.pluginsUp = append(s.pluginsUp, p)
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}
	return nil
}

// abortStart undoes a partial Start. Caller holds s.mu.
func (s *Sync) abortStart(reason string) {
	s.cancel()
	s.closePublisher()
	_ = s.lifecycle.TransitionTo(app.StateCrashed, reason)
}

func (s *Sync) closePublisher() {
	if s.zmqPub == nil {
		return
	}
	if err := s.zmqPub.Close(); err != nil {
		s.logger.Error("close publisher", ports.Err(err))
	}
	s.zmqPub = nil
}

// shutdownPlugins stops initialized plugins in reverse order.
func (s *Sync) shutdownPlugins(ctx context.Context) {
	for i := len(s.pluginsUp) - 1; i >= 0; i-- {
		p := s.pluginsUp[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
	s.pluginsUp = nil
}

// Stop cancels the node and waits for it to finish. A driver restart in
// progress is interrupted. Returns ErrShutdownTimeout if workers do not
// exit within app.ShutdownTimeout.
func (s *Sync) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	s.mu.Lock()
	s.closePublisher()
	s.shutdownPlugins(context.Background())
	s.mu.Unlock()

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Sync) Status() State {
	return State(s.lifecycle.State())
}

// Snapshot returns the node counters and sync state.
// Returns the zero Snapshot before the first Start.
func (s *Sync) Snapshot() Snapshot {
	s.mu.RLock()
	node := s.node
	s.mu.RUnlock()
	if node == nil {
		return Snapshot{}
	}
	return node.Snapshot()
}

// LatchedInfo returns the last diagnostic message, if any.
func (s *Sync) LatchedInfo() (string, bool) {
	s.mu.RLock()
	hub := s.hub
	s.mu.RUnlock()
	if hub == nil {
		return "", false
	}
	msg, ok := hub.Latched()
	return msg.Data, ok
}
