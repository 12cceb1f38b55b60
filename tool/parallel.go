package tool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/reagent/logging"
)

// Task is one tool invocation for parallel execution.
type Task struct {
	Tool string
	Args map[string]any
}

// TaskResult pairs a Task with its outcome. Err is nil on success.
type TaskResult struct {
	Tool   string
	Args   map[string]any
	Output string
	Err    error
}

// ParallelOptions configures a ParallelExecutor.
type ParallelOptions struct {
	// MaxConcurrency caps in-flight invocations. Zero means unbounded.
	MaxConcurrency int
	// Logger receives execution events.
	Logger logging.Logger
}

// ParallelExecutor fans independent tool calls out concurrently through a
// registry. One failing task never aborts its siblings: each TaskResult
// carries its own error and results come back in task order. Registry policy
// (validation, timeout, panic containment) applies per task.
type ParallelExecutor struct {
	registry       *Registry
	maxConcurrency int
	logger         logging.Logger
}

// NewParallelExecutor creates an executor dispatching through registry.
func NewParallelExecutor(registry *Registry, optFns ...func(o *ParallelOptions)) *ParallelExecutor {
	opts := ParallelOptions{
		Logger: logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ParallelExecutor{
		registry:       registry,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
	}
}

// Execute runs all tasks concurrently and returns one result per task, in
// task order. The returned error is non-nil only when ctx was cancelled;
// per-task failures live in the results.
func (e *ParallelExecutor) Execute(ctx context.Context, tasks []Task) ([]TaskResult, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	e.logger.Debug("tool.parallel.start", "tasks", len(tasks))

	results := make([]TaskResult, len(tasks))

	g, runCtx := errgroup.WithContext(ctx)
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}

	for i, task := range tasks {
		i, task := i, task // per-iteration copies; required under pre-1.22 loop semantics
		g.Go(func() error {
			output, err := e.registry.Invoke(runCtx, task.Tool, task.Args)
			results[i] = TaskResult{Tool: task.Tool, Args: task.Args, Output: output, Err: err}

			// Failures are reported per result so sibling tasks keep running.
			return nil
		})
	}

	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	e.logger.Debug("tool.parallel.done", "tasks", len(tasks), "failed", failed)

	// The errgroup context is cancelled once Wait returns; the caller's ctx
	// is what decides whether the batch was aborted.
	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// ExecuteBatch runs the same tool over many argument sets concurrently.
func (e *ParallelExecutor) ExecuteBatch(ctx context.Context, toolName string, argsList []map[string]any) ([]TaskResult, error) {
	tasks := make([]Task, len(argsList))
	for i, args := range argsList {
		tasks[i] = Task{Tool: toolName, Args: args}
	}

	return e.Execute(ctx, tasks)
}
