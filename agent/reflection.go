package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/prompt"
)

// ReflectionOptions configures a ReflectionAgent.
type ReflectionOptions struct {
	Options
	// AcceptanceFunc decides whether a critique accepts the current draft.
	// Nil defaults to marker detection (action.ParseReflection).
	AcceptanceFunc func(critique string) bool
	// AcceptanceMarkers override the default acceptance markers when
	// AcceptanceFunc is nil.
	AcceptanceMarkers []string
	// CritiquePrompt overrides the builtin critique system prompt.
	CritiquePrompt string
}

// ReflectionAgent improves its own answers: it drafts, asks the model to
// critique the draft, and refines until the critique accepts or the budget
// runs out.
//
// One iteration is one draft (the initial draft or a refinement); critiques
// are judgment calls and do not consume the budget. Budget exhaustion
// without acceptance returns the last draft with Reason max_iterations.
type ReflectionAgent struct {
	baseAgent
	accept         func(critique string) bool
	critiquePrompt string
}

// NewReflectionAgent creates a draft-critique-refine agent.
func NewReflectionAgent(name string, client model.Client, optFns ...func(o *ReflectionOptions)) *ReflectionAgent {
	opts := ReflectionOptions{Options: defaultOptions()}
	for _, fn := range optFns {
		fn(&opts)
	}

	accept := opts.AcceptanceFunc
	if accept == nil {
		markers := opts.AcceptanceMarkers
		accept = func(critique string) bool {
			return action.ParseReflection(critique, markers).Satisfied
		}
	}

	return &ReflectionAgent{
		baseAgent:      newBaseAgent(name, client, opts.Options),
		accept:         accept,
		critiquePrompt: opts.CritiquePrompt,
	}
}

// Run drafts an answer and refines it until acceptance or budget exhaustion.
func (a *ReflectionAgent) Run(ctx context.Context, task string) (*core.RunResult, error) {
	start := time.Now()
	runID := core.NewID()

	a.logger.Info("agent.run.start", "agent", a.name, "run_id", runID, "strategy", "reflection")

	draftSystem, err := prompt.RenderSystem(a.opts.SystemPrompt, prompt.DefaultReflectionDraft, "")
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render system prompt: %w", err)
	}
	critiqueSystem, err := prompt.RenderSystem(a.critiquePrompt, prompt.DefaultReflectionCritique, "")
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render critique prompt: %w", err)
	}

	draft, err := a.completeWithRetry(ctx, []core.Message{
		core.NewSystemMessage(draftSystem),
		core.NewUserMessage(task),
	})
	if err != nil {
		a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
		return fatalResult(0, ""), err
	}

	iterations := 1

	for {
		critique, err := a.completeWithRetry(ctx, []core.Message{
			core.NewSystemMessage(critiqueSystem),
			core.NewUserMessage(prompt.CritiqueUser(task, draft)),
		})
		if err != nil {
			a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
			return fatalResult(iterations, draft), err
		}

		if a.accept(critique) {
			a.logger.Info("agent.run.done", "agent", a.name, "run_id", runID, "iterations", iterations,
				"reason", string(core.TerminationAnswered), "duration_ms", time.Since(start).Milliseconds())

			return &core.RunResult{FinalText: draft, Iterations: iterations, Reason: core.TerminationAnswered}, nil
		}

		if iterations >= a.opts.MaxIterations {
			a.logger.Warn("agent.run.budget", "agent", a.name, "run_id", runID, "iterations", iterations)

			return &core.RunResult{FinalText: draft, Iterations: iterations, Reason: core.TerminationMaxIterations}, nil
		}

		a.logger.Debug("agent.loop.refine", "agent", a.name, "iteration", iterations, "critique_len", len(critique))

		refined, err := a.completeWithRetry(ctx, []core.Message{
			core.NewSystemMessage(draftSystem),
			core.NewUserMessage(prompt.RefineUser(task, draft, critique)),
		})
		if err != nil {
			a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
			return fatalResult(iterations, draft), err
		}

		draft = refined
		iterations++
	}
}
