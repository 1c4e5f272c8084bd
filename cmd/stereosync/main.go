package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/stereosync/internal/cliconfig"
	logAdapter "github.com/bft-labs/stereosync/pkg/log"
	"github.com/bft-labs/stereosync/pkg/stereosync"
	"github.com/bft-labs/stereosync/plugins/configwatcher"
)

const helpDescription = `
Pair the left and right images of a stereo camera by capture time and
republish them with a shared stamp. If no pair is produced for a while,
the camera driver is killed and relaunched.

Input is read from the driver's ZeroMQ publisher on <camera>_unsync/*
topics; synchronized pairs are published on <camera>/* topics. Restart
notices go to <node-name>/info and to WebSocket clients of the info server.
`

var exampleUsage = strings.TrimSpace(`
  stereosync --camera /stereo_down --driver stereo_down
  stereosync --config $HOME/.stereosync/config.toml --log-level debug
  STEREOSYNC_SYNC_TOLERANCE=50ms stereosync --info-addr ""
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return stereosync.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger(cfg.LogLevel)

	root := &cobra.Command{
		Use:          "stereosync",
		Short:        "Synchronize a stereo camera pair and restart its driver when it stalls",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadedFrom := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				loadedFrom = cfgFile
			}

			// STEREOSYNC_* variables override the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.Logger(cfg.LogLevel)
			log.Info().Interface("config", cfg).Str("config_file", loadedFrom).Msg("configuration")

			libCfg := stereosync.Config{
				Camera:           cfg.Camera,
				Driver:           cfg.Driver,
				NodeName:         cfg.NodeName,
				SyncTolerance:    cfg.SyncTolerance,
				DesiredFrequency: cfg.DesiredFrequency,
				StaleMultiplier:  cfg.StaleMultiplier,
				ResetWait:        cfg.ResetWait,
				RestartDelay:     cfg.RestartDelay,
				QueueSize:        cfg.QueueSize,
				KillCommand:      cfg.KillCommand,
				LaunchCommand:    cfg.LaunchCommand,
				SubEndpoint:      cfg.SubEndpoint,
				PubEndpoint:      cfg.PubEndpoint,
				InfoAddr:         cfg.InfoAddr,
				StateDir:         cfg.StateDir,
				ConfigPath:       loadedFrom,
				WarnThrottle:     cfg.WarnThrottle,
				LogEvery:         cfg.LogEvery,
			}

			s, err := stereosync.New(libCfg,
				stereosync.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
				configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
			)
			if err != nil {
				return fmt.Errorf("create sync node: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start sync node: %w", err)
			}

			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if s.Status() == stereosync.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			crashed := false
			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
			case <-doneCh:
				log.Error().Msg("sync node crashed")
				crashed = true
			}

			if !crashed {
				if err := s.Stop(); err != nil {
					return fmt.Errorf("stop sync node: %w", err)
				}
				return nil
			}
			return fmt.Errorf("sync node crashed")
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.stereosync/config.toml)")
	f.StringVar(&cfg.Camera, "camera", cfg.Camera, "camera namespace; input on <camera>_unsync/*, output on <camera>/*")
	f.StringVar(&cfg.Driver, "driver", cfg.Driver, "camera driver node to restart on stalls")
	f.StringVar(&cfg.NodeName, "node-name", cfg.NodeName, "name of this node; info is published on <node-name>/info")

	f.DurationVar(&cfg.SyncTolerance, "sync-tolerance", cfg.SyncTolerance, "maximum left/right stamp difference of a pair")
	f.Float64Var(&cfg.DesiredFrequency, "desired-freq", cfg.DesiredFrequency, "expected pair rate in Hz")
	f.Float64Var(&cfg.StaleMultiplier, "stale-multiplier", cfg.StaleMultiplier, "frame periods without a pair before restarting the driver")
	f.DurationVar(&cfg.ResetWait, "reset-wait", cfg.ResetWait, "cooldown after a driver restart")
	f.DurationVar(&cfg.RestartDelay, "restart-delay", cfg.RestartDelay, "pause after killing and after relaunching the driver")
	f.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "per-stream correlator queue size")

	f.StringVar(&cfg.KillCommand, "kill-command", cfg.KillCommand, "shell command that stops the driver ({node}, {camera} are expanded)")
	f.StringVar(&cfg.LaunchCommand, "launch-command", cfg.LaunchCommand, "shell command that launches the driver ({node}, {camera} are expanded)")

	f.StringVar(&cfg.SubEndpoint, "sub-endpoint", cfg.SubEndpoint, "ZeroMQ endpoint of the camera driver")
	f.StringVar(&cfg.PubEndpoint, "pub-endpoint", cfg.PubEndpoint, "ZeroMQ endpoint to bind for synchronized pairs")
	f.StringVar(&cfg.InfoAddr, "info-addr", cfg.InfoAddr, "listen address of the info server (empty disables)")

	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json (default: $HOME/.stereosync)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.DurationVar(&cfg.WarnThrottle, "warn-throttle", cfg.WarnThrottle, "minimum interval between repeated warnings (0 disables)")
	f.IntVar(&cfg.LogEvery, "log-every", cfg.LogEvery, "log every Nth received message at debug level")
	if err := f.MarkHidden("log-every"); err != nil {
		log.Info().Err(err).Msg("failed to hide log-every flag")
	}

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("stereosync")
		os.Exit(1)
	}
}
