package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/reagent/internal/util"
)

// Tool is the interface every capability exposed to agents implements.
//
// Tools are invoked through the Registry, which validates arguments against
// Parameters before Call runs, bounds execution time and contains panics.
// A tool therefore only needs to do its work and return text; cross-cutting
// policy is not its concern.
//
// Implementations must be safe for concurrent use: one registered tool may be
// called from many runs at once. Tools that mutate shared state need their
// own synchronization.
type Tool interface {
	// Name returns the unique identifier the model uses to request this tool.
	// Names should follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is rendered into the system prompt so the model knows when to use it.
	Description() string

	// Parameters returns a JSON-schema-shaped map ("type", "properties",
	// "required") describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-validated arguments and returns the
	// result text. Blocking work must honor ctx cancellation.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ValidationError reports a single argument that failed schema validation.
type ValidationError = util.ValidationError

// DuplicateToolError is returned by Register when the name is already taken
// and no overwrite was requested. It is a programmer error and surfaces
// immediately; the first registration stays active.
type DuplicateToolError struct {
	Name string `json:"name"`
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownToolError is returned by Lookup and Invoke for unregistered names.
type UnknownToolError struct {
	Name string `json:"name"`
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.Name)
}

// ToolArgumentError means the supplied arguments did not satisfy the tool's
// schema. The underlying callable was never invoked.
type ToolArgumentError struct {
	Tool   string `json:"tool"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

func (e *ToolArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Detail)
}

// Unwrap exposes the underlying validation error for errors.As.
func (e *ToolArgumentError) Unwrap() error { return e.Err }

// ToolExecutionError means the tool ran and failed: it returned an error,
// panicked, or exceeded the registry's invocation timeout.
type ToolExecutionError struct {
	Tool string `json:"tool"`
	Err  error  `json:"-"`
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Err)
}

// Unwrap exposes the cause, so errors.Is(err, context.DeadlineExceeded)
// detects timeouts.
func (e *ToolExecutionError) Unwrap() error { return e.Err }
