// Package stereosync provides an embeddable stereo camera pair synchronizer
// with a driver watchdog.
//
// A Sync instance subscribes to the raw left/right images and camera infos
// of a stereo camera, groups them by capture time, and republishes every
// pair whose left and right stamps are within the sync tolerance. Pairs are
// restamped so that both images and both infos carry one shared stamp.
//
// When no pair has been published for StaleMultiplier frame periods, the
// watchdog restarts the camera driver (kill, wait, relaunch, wait), publishes
// a diagnostic message on "<NodeName>/info" and then holds off for ResetWait
// before it may trigger again.
//
// # Basic Usage
//
//	cfg := stereosync.DefaultConfig()
//	cfg.Camera = "/stereo_down"
//	cfg.Driver = "stereo_down"
//
//	s, err := stereosync.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := s.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Transports
//
// By default input is read from a ZeroMQ SUB socket on SubEndpoint and pairs
// are published on a PUB socket bound to PubEndpoint, CBOR encoded. Diagnostic
// messages also go to WebSocket clients of the info server on InfoAddr. Each
// transport can be replaced:
//
//	s, err := stereosync.New(cfg,
//	    stereosync.WithMessageSource(mySource),
//	    stereosync.WithPairPublisher(myPublisher),
//	    stereosync.WithDriverController(myDriver),
//	)
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler]) and pass it via
// [WithEventHandler] to be notified of lifecycle transitions and driver
// restarts. Handlers are called synchronously.
//
// # Lifecycle States
//
// A Sync instance is in one of [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Use [Sync.Status] to
// query it and [Sync.Snapshot] for the sync counters.
package stereosync
