package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/prompt"
	"github.com/hupe1980/reagent/tool"
)

// ReActAgent interleaves reasoning and tool use: each iteration obtains a
// completion, parses it into exactly one Action and either invokes the
// requested tool (feeding the result back as an observation) or terminates
// with the final answer.
//
// One iteration is one completion. Tool failures never abort the run; their
// error text becomes the observation so the model can route around them. A
// run ends answered, or with max_iterations when the budget expires, or with
// fatal_error on provider failure, cancellation or (when StopOnParseError is
// set) an uninterpretable completion.
type ReActAgent struct {
	baseAgent
	registry *tool.Registry
}

// NewReActAgent creates a reason+act agent dispatching through registry.
// A nil registry gets an empty one, which makes every tool call an
// "unknown tool" observation.
func NewReActAgent(name string, client model.Client, registry *tool.Registry, optFns ...func(o *Options)) *ReActAgent {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if registry == nil {
		registry = tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = opts.Logger })
	}

	return &ReActAgent{
		baseAgent: newBaseAgent(name, client, opts),
		registry:  registry,
	}
}

// Run executes the reason+act loop on the task.
func (a *ReActAgent) Run(ctx context.Context, task string) (*core.RunResult, error) {
	start := time.Now()
	runID := core.NewID()

	a.logger.Info("agent.run.start", "agent", a.name, "run_id", runID, "strategy", "react")

	system, err := prompt.RenderSystem(a.opts.SystemPrompt, prompt.DefaultReAct, a.registry.Describe())
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render system prompt: %w", err)
	}

	conv := core.NewConversation(
		core.NewSystemMessage(system),
		core.NewUserMessage(task),
	)

	loop := &reactLoop{base: &a.baseAgent, registry: a.registry, conv: conv}
	text, iterations, reason, runErr := loop.run(ctx, a.opts.MaxIterations)

	if runErr != nil {
		a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "iterations", iterations, "error", runErr.Error())
	} else {
		a.logger.Info("agent.run.done", "agent", a.name, "run_id", runID, "iterations", iterations,
			"reason", string(reason), "duration_ms", time.Since(start).Milliseconds())
	}

	return &core.RunResult{FinalText: text, Iterations: iterations, Reason: reason}, runErr
}

// reactLoop is the reason+act engine shared by ReActAgent (whole task) and
// PlanAndSolveAgent (one plan step at a time). It appends everything it does
// to conv: completions as assistant turns, tool results as tool turns,
// corrective notes as system turns.
type reactLoop struct {
	base     *baseAgent
	registry *tool.Registry
	conv     *core.Conversation
}

// run drives the loop for at most maxIterations completions. It returns the
// final (or best-effort) text, the iterations performed, the termination
// reason and the fatal error if any.
func (l *reactLoop) run(ctx context.Context, maxIterations int) (string, int, core.TerminationReason, error) {
	lastText := ""
	completed := 0

	for i := 1; i <= maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return lastText, completed, core.TerminationFatalError,
				model.NewFatalError(l.base.client.Info().Provider, "run cancelled", err)
		}

		completion, err := l.base.completeWithRetry(ctx, l.conv.Snapshot())
		if err != nil {
			return lastText, completed, core.TerminationFatalError, err
		}

		completed = i
		lastText = completion
		l.conv.Append(core.NewAssistantMessage(completion))

		switch act := action.Parse(completion).(type) {
		case action.FinalAnswer:
			l.base.logger.Debug("agent.loop.answer", "agent", l.base.name, "iteration", i)
			return act.Text, i, core.TerminationAnswered, nil

		case action.ToolCall:
			// Invoked even on the last iteration: a requested side effect
			// must run and leave its result in the record before the budget
			// verdict.
			l.observe(ctx, act)

		case action.ParseError:
			if l.base.opts.StopOnParseError {
				return lastText, i, core.TerminationFatalError, act
			}
			l.base.logger.Warn("agent.loop.parse_error", "agent", l.base.name, "iteration", i, "reason", act.Reason)
			l.conv.Append(core.NewSystemMessage(prompt.CorrectiveNote(act.Reason)))
		}
	}

	return lastText, maxIterations, core.TerminationMaxIterations, nil
}

// observe invokes the requested tool and appends its output (or error text)
// as a tool turn. Every ToolCall gets a recorded result, success or not.
func (l *reactLoop) observe(ctx context.Context, call action.ToolCall) {
	callID := core.NewID()

	output, err := l.registry.Invoke(ctx, call.Name, call.Args)
	if err != nil {
		output = "ERROR: " + err.Error()
	}

	l.conv.Append(core.NewToolMessage(call.Name, callID, output, call.Args))
}
