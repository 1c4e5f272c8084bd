// Package log is the structured logging interface used across stereosync.
//
// Components log through Logger with typed Field values. ZerologAdapter is
// the production implementation; NoopLogger discards everything.
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	watchdog := log.Named(logger, "watchdog")
//	watchdog.Warn("no sync", log.Duration("staleness", d))
//
// Any type with Debug, Info, Warn and Error methods taking (string, ...Field)
// can be passed to stereosync.WithLogger.
package log
