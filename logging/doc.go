// Package logging provides a minimal logging interface and adapters for
// agentroute.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the runner, agents and tools use for observability:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface small to avoid vendor lock-in
// while supporting structured logging where available.
package logging
