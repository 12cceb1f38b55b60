package tool

import (
	"context"

	"github.com/hupe1980/reagent/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool.
//
// It holds a lightweight JSON-Schema-like parameter specification alongside
// the wrapped function. Argument validation is not performed here: the
// Registry validates against Parameters() before dispatching, so the function
// receives arguments that already satisfy the schema. Callers bypassing the
// registry take over that responsibility.
//
// Concurrency:
//
//	A FunctionTool has no internal mutable state after construction and is
//	safe for concurrent use by multiple goroutines.
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	echoTool := NewFunctionTool(
//	  "echo",
//	  "Return the input unchanged",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "text": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"text"},
//	  },
//	  func(ctx context.Context, args map[string]any) (string, error) {
//	    return args["text"].(string), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers and produces
// a schema equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type GreetArgs struct {
//	  Name string `json:"name" description:"Who to greet"`
//	}
//
//	greetTool := NewFunctionToolFromStruct(
//	  "greet",
//	  "Greet someone by name",
//	  GreetArgs{},
//	  func(ctx context.Context, args map[string]any) (string, error) {
//	    return "Hello, " + args["name"].(string), nil
//	  },
//	)
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	return NewFunctionTool(name, description, schema, fn)
}

// Name returns the unique tool name used in action parsing and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call invokes the underlying function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}
