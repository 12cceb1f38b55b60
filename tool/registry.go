package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/internal/util"
	"github.com/hupe1980/reagent/logging"
)

// DefaultInvokeTimeout bounds a single tool invocation unless overridden.
const DefaultInvokeTimeout = 30 * time.Second

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Timeout bounds one Invoke call. Zero disables the bound.
	Timeout time.Duration
	// Logger receives dispatch events.
	Logger logging.Logger
}

// RegisterOptions configures a single Register call.
type RegisterOptions struct {
	// Overwrite replaces an existing registration instead of rejecting it.
	Overwrite bool
}

// WithOverwrite makes Register replace an already registered tool of the same
// name. Without it the first registration stays active and Register returns
// a *DuplicateToolError.
func WithOverwrite() func(o *RegisterOptions) {
	return func(o *RegisterOptions) { o.Overwrite = true }
}

// Registry is the single dispatch point between agents and tools. It owns
// the name -> Tool mapping and applies cross-cutting invocation policy:
// argument validation, positional argument re-keying, execution timeout and
// panic containment. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	timeout time.Duration
	logger  logging.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Timeout: DefaultInvokeTimeout,
		Logger:  logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:   make(map[string]Tool),
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Register adds a tool under its own name. Registering a name twice is an
// error and leaves the first registration active, unless WithOverwrite is
// given.
func (r *Registry) Register(t Tool, optFns ...func(o *RegisterOptions)) error {
	opts := RegisterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if t == nil {
		return fmt.Errorf("tool must not be nil")
	}

	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		if !opts.Overwrite {
			return &DuplicateToolError{Name: name}
		}
		r.tools[name] = t
		r.logger.Debug("tool.register.overwrite", "tool", name)

		return nil
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	r.logger.Debug("tool.register", "tool", name)

	return nil
}

// MustRegister is Register but panics on error. Intended for wiring builtin
// tools at startup.
func (r *Registry) MustRegister(t Tool, optFns ...func(o *RegisterOptions)) {
	if err := r.Register(t, optFns...); err != nil {
		panic(err)
	}
}

// RegisterFunction wraps a plain function as a FunctionTool and registers it.
func (r *Registry) RegisterFunction(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) error {
	return r.Register(NewFunctionTool(name, description, parameters, fn))
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	return t, nil
}

// Invoke dispatches one tool call: it resolves the name, re-keys a positional
// argument to the tool's single required parameter, validates the arguments
// against the tool's schema and runs the tool under the registry's timeout
// with panic containment.
//
// Error Semantics:
//
//	*UnknownToolError    -> name not registered, nothing ran
//	*ToolArgumentError   -> schema validation failed, nothing ran
//	*ToolExecutionError  -> the tool ran and returned an error, panicked or
//	                        timed out (Unwrap yields context.DeadlineExceeded)
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	t, err := r.Lookup(name)
	if err != nil {
		r.logger.Warn("tool.call.unknown", "tool", name)
		return "", err
	}

	args = normalizeArgs(t, args)

	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		r.logger.Warn("tool.call.validation_failed", "tool", name, "error", err.Error())

		argErr := &ToolArgumentError{Tool: name, Detail: err.Error(), Err: err}

		var vErr *util.ValidationError
		if errors.As(err, &vErr) {
			argErr.Field = vErr.Field
		}

		return "", argErr
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	r.logger.Debug("tool.call.start", "tool", name)

	output, err := run(callCtx, t, args)
	if err != nil {
		r.logger.Error("tool.call.error", "tool", name, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return "", &ToolExecutionError{Tool: name, Err: err}
	}

	r.logger.Info("tool.call.success", "tool", name, "duration_ms", time.Since(start).Milliseconds())

	return output, nil
}

// Describe renders one `- name: description` line per registered tool, in
// registration order. Prompt templates embed it so the model knows what it
// can call.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return "(no tools available)"
	}

	var sb strings.Builder
	for i, name := range r.order {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s: %s", name, r.tools[name].Description())
	}

	return sb.String()
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// run executes the tool on its own goroutine so a panicking tool is contained
// and a tool that ignores ctx still cannot hold Invoke past the deadline.
func run(ctx context.Context, t Tool, args map[string]any) (string, error) {
	type result struct {
		output string
		err    error
	}

	ch := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- result{err: fmt.Errorf("panic: %v", rec)}
			}
		}()

		output, err := t.Call(ctx, args)
		ch <- result{output: output, err: err}
	}()

	select {
	case res := <-ch:
		return res.output, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// normalizeArgs copies args and re-keys a bare positional argument to the
// tool's single required parameter, so `Action: calculator[2+2]` reaches the
// calculator as {"expression": "2+2"}.
func normalizeArgs(t Tool, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}

	if len(out) != 1 {
		return out
	}

	value, ok := out[action.PositionalArgKey]
	if !ok {
		return out
	}

	if param, found := util.SingleRequiredParam(t.Parameters()); found && param != action.PositionalArgKey {
		delete(out, action.PositionalArgKey)
		out[param] = value
	}

	return out
}
