package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/reagent/agent"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logging services.
	Logger logging.Logger
}

// Outcome is the terminal report of a launched run, delivered exactly once
// on the channel returned by Launch.
type Outcome struct {
	RunID  string
	Result *core.RunResult
	Err    error
}

// RunNotFoundError reports a cancel request for an unknown or already
// finished run.
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run %s not found", e.RunID)
}

// Runner launches agent runs concurrently and tracks them by run ID so they
// can be cancelled individually. Public methods are safe for concurrent use.
type Runner struct {
	logger logging.Logger

	mu     sync.RWMutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		logger: opts.Logger,
		active: make(map[string]context.CancelFunc),
	}
}

// Launch starts a.Run(ctx, task) in its own goroutine and returns the run ID
// together with a buffered channel that delivers the single Outcome. The
// channel is closed after delivery, so both receive styles work:
//
//	outcome := <-ch
//	for outcome := range ch { ... }
func (r *Runner) Launch(ctx context.Context, a agent.Agent, task string) (string, <-chan Outcome) {
	runID := core.NewID()
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.active[runID] = cancel
	r.mu.Unlock()

	outcomeCh := make(chan Outcome, 1)

	r.logger.Info("runner.launch", "run_id", runID, "agent", a.Name())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		result, err := a.Run(runCtx, task)

		r.mu.Lock()
		delete(r.active, runID)
		r.mu.Unlock()

		if err != nil {
			r.logger.Warn("runner.run.failed", "run_id", runID, "agent", a.Name(), "error", err.Error())
		} else {
			r.logger.Info("runner.run.done", "run_id", runID, "agent", a.Name(), "reason", string(result.Reason))
		}

		outcomeCh <- Outcome{RunID: runID, Result: result, Err: err}
		close(outcomeCh)
	}()

	return runID, outcomeCh
}

// Cancel cancels a running run by ID. The run still delivers its Outcome;
// cancellation only stops the work.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.active[runID]
	r.mu.RUnlock()

	if !exists {
		return &RunNotFoundError{RunID: runID}
	}

	r.logger.Info("runner.cancel", "run_id", runID)
	cancel()

	return nil
}

// Active lists the IDs of runs that have been launched and not yet finished,
// sorted for deterministic output.
func (r *Runner) Active() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Wait blocks until every launched run has delivered its outcome.
func (r *Runner) Wait() {
	r.wg.Wait()
}
