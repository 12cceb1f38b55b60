// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug in
// any structured logger. This package includes:
//
//   - Logger interface for dependency injection (Debug, Info, Warn, Error)
//   - SlogAdapter wrapping Go's structured logging
//   - ReagentLogger with contextual helpers (component, agent, run) and
//     domain specific logging helpers for tools, model calls and runs
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	agent := agent.NewReActAgent("assistant", client, registry,
//		func(o *agent.Options) { o.Logger = logger })
//
// Log messages are dot-separated event names ("agent.run.start",
// "tool.call.error") with key/value details, so they aggregate cleanly in
// structured backends.
package logging
