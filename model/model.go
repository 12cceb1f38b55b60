package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/reagent/core"
)

// ObservationPrefix labels a tool result when a provider folds tool-role
// messages into user turns. It pairs with the format instructions in the
// prompt package.
const ObservationPrefix = "Observation: "

// Options carry per-call generation parameters. The engine passes them
// through opaquely; only the provider adapter interprets them. Zero values
// mean "use the adapter's default".
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// WithModel overrides the model identifier for a call.
func WithModel(model string) func(*Options) {
	return func(o *Options) { o.Model = model }
}

// WithTemperature overrides the sampling temperature for a call.
func WithTemperature(temperature float64) func(*Options) {
	return func(o *Options) { o.Temperature = temperature }
}

// WithMaxTokens overrides the completion token budget for a call.
func WithMaxTokens(maxTokens int64) func(*Options) {
	return func(o *Options) { o.MaxTokens = maxTokens }
}

// Info contains metadata about a client implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Client is the minimal interface agents use to obtain completions.
//
// Complete sends the ordered conversation and returns the assistant text.
// Failures are reported as *ProviderError, Kind transient (retryable by the
// caller) or fatal (terminate the run). Implementations must be safe for
// concurrent use: independent runs share one client.
type Client interface {
	Complete(ctx context.Context, messages []core.Message, optFns ...func(o *Options)) (string, error)

	// Info returns information about the client implementation.
	Info() Info
}

// ErrorKind classifies a provider failure for retry decisions.
type ErrorKind string

const (
	// ErrorKindTransient marks failures worth retrying (rate limits, timeouts,
	// upstream hiccups).
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindFatal marks failures that will not heal on retry (auth,
	// malformed request, cancelled context).
	ErrorKindFatal ErrorKind = "fatal"
)

// ProviderError is the uniform failure type surfaced by every Client.
type ProviderError struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Detail   string    `json:"detail"`
	Err      error     `json:"-"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s] in %s: %s", e.Kind, e.Provider, e.Detail)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether a retry may succeed.
func (e *ProviderError) Transient() bool { return e.Kind == ErrorKindTransient }

// NewTransientError builds a retryable provider failure.
func NewTransientError(provider, detail string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrorKindTransient, Detail: detail, Err: err}
}

// NewFatalError builds a non-retryable provider failure.
func NewFatalError(provider, detail string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrorKindFatal, Detail: detail, Err: err}
}

// ClassifyStatus maps an HTTP status from a provider SDK to a ProviderError.
// Rate limits, request timeouts and upstream errors are transient; every
// other status is fatal (auth, malformed request, missing model).
func ClassifyStatus(provider string, status int, err error) *ProviderError {
	detail := fmt.Sprintf("status %d", status)
	if err != nil {
		detail = err.Error()
	}
	switch {
	case status == 408 || status == 429 || status >= 500:
		return NewTransientError(provider, detail, err)
	default:
		return NewFatalError(provider, detail, err)
	}
}

// ScriptedClient is an in-memory Client that replays a fixed script of
// completions and errors in order. Useful for tests and examples: agent loops
// are fully deterministic against it. It records every request it receives.
type ScriptedClient struct {
	mu       sync.Mutex
	steps    []scriptStep
	cursor   int
	requests [][]core.Message
}

type scriptStep struct {
	text string
	err  error
}

// NewScriptedClient constructs a client that answers with the given
// completions in order.
func NewScriptedClient(responses ...string) *ScriptedClient {
	c := &ScriptedClient{}
	for _, r := range responses {
		c.AddResponse(r)
	}
	return c
}

// AddResponse appends a canned completion to the script.
func (c *ScriptedClient) AddResponse(text string) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, scriptStep{text: text})
	return c
}

// AddError appends a failure to the script.
func (c *ScriptedClient) AddError(err error) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, scriptStep{err: err})
	return c
}

// Complete implements Client. An exhausted script fails fatally so a looping
// test cannot spin forever.
func (c *ScriptedClient) Complete(ctx context.Context, messages []core.Message, optFns ...func(o *Options)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewFatalError("mock", "context done", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]core.Message, len(messages))
	copy(snapshot, messages)
	c.requests = append(c.requests, snapshot)

	if c.cursor >= len(c.steps) {
		return "", NewFatalError("mock", "script exhausted", nil)
	}
	step := c.steps[c.cursor]
	c.cursor++
	if step.err != nil {
		return "", step.err
	}
	return step.text, nil
}

// Info implements Client.
func (c *ScriptedClient) Info() Info { return Info{Name: "scripted", Provider: "mock"} }

// Calls returns how many completions were requested so far.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Requests returns the recorded message sequences, one per call.
func (c *ScriptedClient) Requests() [][]core.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]core.Message, len(c.requests))
	copy(out, c.requests)
	return out
}
