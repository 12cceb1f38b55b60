package agent

import (
	"context"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/model"
)

// DefaultMaxIterations bounds reasoning loops unless overridden.
const DefaultMaxIterations = 5

// Agent is the minimal surface every execution strategy implements.
//
// Run executes one task to completion and always returns a *core.RunResult,
// even when it also returns an error: the result then carries the best
// available text, the iterations spent and Reason fatal_error.
type Agent interface {
	// Name returns the agent's identifier, used in logs and by the runner.
	Name() string

	// Run executes the task. Blocking work honors ctx cancellation; a
	// cancelled run terminates with Reason fatal_error.
	Run(ctx context.Context, task string) (*core.RunResult, error)
}

// Options configures the loop behavior shared by all strategies.
type Options struct {
	// MaxIterations bounds the thinking phases of one run. Each strategy
	// documents what one iteration means for it. Defaults to
	// DefaultMaxIterations.
	MaxIterations int

	// StopOnParseError terminates the run on the first uninterpretable
	// completion instead of sending a corrective note and retrying.
	StopOnParseError bool

	// SystemPrompt overrides the strategy's builtin system prompt template.
	// The {{.tools}} variable receives the tool catalog.
	SystemPrompt string

	// Retry controls backoff for transient provider errors.
	Retry RetryPolicy

	// Logger receives run events.
	Logger logging.Logger

	// ModelOptions are forwarded to every Complete call.
	ModelOptions []func(o *model.Options)
}

func defaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Retry:         DefaultRetryPolicy(),
		Logger:        logging.NewDefaultSlogLogger(),
	}
}

func (o *Options) normalize() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = logging.NewDefaultSlogLogger()
	}
	o.Retry.normalize()
}

// baseAgent carries what every strategy needs: identity, the model client
// and the shared loop configuration.
type baseAgent struct {
	name   string
	client model.Client
	opts   Options
	logger logging.Logger
}

func newBaseAgent(name string, client model.Client, opts Options) baseAgent {
	opts.normalize()

	return baseAgent{
		name:   name,
		client: client,
		opts:   opts,
		logger: opts.Logger,
	}
}

// Name returns the agent's identifier.
func (a *baseAgent) Name() string { return a.name }

func fatalResult(iterations int, text string) *core.RunResult {
	return &core.RunResult{FinalText: text, Iterations: iterations, Reason: core.TerminationFatalError}
}
