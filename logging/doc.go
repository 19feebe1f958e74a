// Package logging provides a minimal logging interface and adapters for racetrack.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that cars, runners and policies use for their diagnostics. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - RacetrackLogger with car/run context and step/run/model helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	c := car.New(func(o *car.Options) { o.Logger = logger.WithComponent("car") })
//
// Diagnostics are advisory; no caller should parse them.
package logging
