package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/prompt"
	"github.com/hupe1980/reagent/tool"
)

// DefaultStepIterations bounds the react sub-loop of one plan step.
const DefaultStepIterations = 3

// PlanSolveOptions configures a PlanAndSolveAgent. The embedded SystemPrompt
// overrides the step executor prompt (the tool-using part); the planning and
// synthesis prompts have their own fields.
type PlanSolveOptions struct {
	Options
	// StepIterations bounds each plan step's reason+act sub-loop.
	StepIterations int
	// PlanPrompt overrides the builtin planning system prompt.
	PlanPrompt string
	// SynthesisPrompt overrides the builtin synthesis system prompt.
	SynthesisPrompt string
}

// PlanAndSolveAgent decomposes the task into an ordered plan, executes each
// step with a bounded reason+act sub-loop and synthesizes the step results
// into one final answer.
//
// One iteration is one executed plan step; the planning and synthesis calls
// are free. MaxIterations bounds executed steps: surplus steps are recorded
// as skipped and the synthesis call is told, so the answer can state what is
// missing. A step that fails (sub-loop budget exhausted) is reported as
// FAILED but never aborts the remaining steps; only fatal provider errors
// and cancellation abort the run.
type PlanAndSolveAgent struct {
	baseAgent
	registry        *tool.Registry
	stepIterations  int
	planPrompt      string
	synthesisPrompt string
}

// NewPlanAndSolveAgent creates a plan-execute-synthesize agent dispatching
// through registry. A nil registry gets an empty one.
func NewPlanAndSolveAgent(name string, client model.Client, registry *tool.Registry, optFns ...func(o *PlanSolveOptions)) *PlanAndSolveAgent {
	opts := PlanSolveOptions{
		Options:        defaultOptions(),
		StepIterations: DefaultStepIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.StepIterations <= 0 {
		opts.StepIterations = DefaultStepIterations
	}
	if registry == nil {
		registry = tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = opts.Logger })
	}

	return &PlanAndSolveAgent{
		baseAgent:       newBaseAgent(name, client, opts.Options),
		registry:        registry,
		stepIterations:  opts.StepIterations,
		planPrompt:      opts.PlanPrompt,
		synthesisPrompt: opts.SynthesisPrompt,
	}
}

// Run plans, executes the steps and synthesizes the final answer.
func (a *PlanAndSolveAgent) Run(ctx context.Context, task string) (*core.RunResult, error) {
	start := time.Now()
	runID := core.NewID()

	a.logger.Info("agent.run.start", "agent", a.name, "run_id", runID, "strategy", "plan_and_solve")

	planSystem, err := prompt.RenderSystem(a.planPrompt, prompt.DefaultPlan, "")
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render plan prompt: %w", err)
	}
	stepSystem, err := prompt.RenderSystem(a.opts.SystemPrompt, prompt.DefaultReAct, a.registry.Describe())
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render system prompt: %w", err)
	}
	synthesisSystem, err := prompt.RenderSystem(a.synthesisPrompt, prompt.DefaultSynthesis, "")
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render synthesis prompt: %w", err)
	}

	steps, err := a.plan(ctx, planSystem, task)
	if err != nil {
		a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
		return fatalResult(0, ""), err
	}

	a.logger.Info("agent.plan.ready", "agent", a.name, "run_id", runID, "steps", len(steps))

	outcomes := make([]prompt.StepOutcome, 0, len(steps))
	executed := 0

	for i, step := range steps {
		if executed >= a.opts.MaxIterations {
			outcomes = append(outcomes, prompt.StepOutcome{
				Description: step.Description,
				Result:      "skipped: iteration budget exhausted",
				Failed:      true,
			})
			continue
		}

		conv := core.NewConversation(
			core.NewSystemMessage(stepSystem),
			core.NewUserMessage(prompt.StepUser(task, step.Description, prompt.StepReport(outcomes))),
		)

		loop := &reactLoop{base: &a.baseAgent, registry: a.registry, conv: conv}
		text, _, reason, runErr := loop.run(ctx, a.stepIterations)
		if runErr != nil {
			a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "step", i+1, "error", runErr.Error())
			return fatalResult(executed, text), runErr
		}
		executed++

		outcome := prompt.StepOutcome{Description: step.Description, Result: text}
		if reason != core.TerminationAnswered {
			outcome.Failed = true
			if strings.TrimSpace(text) == "" {
				outcome.Result = "step did not conclude within its budget"
			}
		}
		outcomes = append(outcomes, outcome)

		a.logger.Debug("agent.step.done", "agent", a.name, "step", i+1, "failed", outcome.Failed)
	}

	synthesis, err := a.completeWithRetry(ctx, []core.Message{
		core.NewSystemMessage(synthesisSystem),
		core.NewUserMessage(prompt.SynthesisUser(task, prompt.StepReport(outcomes))),
	})
	if err != nil {
		a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
		return fatalResult(executed, ""), err
	}

	a.logger.Info("agent.run.done", "agent", a.name, "run_id", runID, "iterations", executed,
		"reason", string(core.TerminationAnswered), "duration_ms", time.Since(start).Milliseconds())

	return &core.RunResult{FinalText: synthesis, Iterations: executed, Reason: core.TerminationAnswered}, nil
}

// plan obtains the step list, allowing the model one corrective retry when
// the completion has no recognizable steps. A second failure is fatal.
func (a *PlanAndSolveAgent) plan(ctx context.Context, system, task string) ([]action.PlanStep, error) {
	conv := core.NewConversation(
		core.NewSystemMessage(system),
		core.NewUserMessage(prompt.PlanUser(task)),
	)

	completion, err := a.completeWithRetry(ctx, conv.Snapshot())
	if err != nil {
		return nil, err
	}
	conv.Append(core.NewAssistantMessage(completion))

	steps, perr := action.ParsePlan(completion)
	if perr == nil {
		return steps, nil
	}

	reason := perr.Error()
	var parseErr action.ParseError
	if errors.As(perr, &parseErr) {
		reason = parseErr.Reason
	}

	a.logger.Warn("agent.plan.parse_error", "agent", a.name, "reason", reason)
	conv.Append(core.NewSystemMessage(prompt.PlanCorrectiveNote(reason)))

	completion, err = a.completeWithRetry(ctx, conv.Snapshot())
	if err != nil {
		return nil, err
	}

	return action.ParsePlan(completion)
}
