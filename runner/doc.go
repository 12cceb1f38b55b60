// Package runner manages the lifecycle of concurrent agent runs.
//
// An agent.Agent is synchronous: Run blocks until the strategy terminates.
// The Runner wraps that in goroutine plumbing so callers can fire off several
// runs, keep working, and collect outcomes when they are ready.
//
// # Responsibilities (abridged)
//   - Launching runs and handing back a one-shot Outcome channel
//   - Tracking active runs by run ID
//   - Cancellation of individual runs without touching the others
//
// A cancelled run is not dropped: its agent observes the context, winds down
// and still delivers an Outcome (typically with Reason fatal_error).
package runner
