package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/prompt"
)

// SimpleOptions configures a SimpleAgent.
type SimpleOptions struct {
	Options
	// History is the conversation to continue. Nil starts a fresh one. Pass
	// a session store conversation to keep context across runs.
	History *core.Conversation
	// MaxHistory bounds how many prior turns are replayed per call. Zero
	// replays the full history.
	MaxHistory int
}

// SimpleAgent answers with a single model completion per run. No tools, no
// loop: the completion text is the final answer and Iterations is always 1.
//
// It keeps a conversation across runs, so consecutive Run calls form a chat.
// Turns are expected to be sequential; concurrent runs against one
// SimpleAgent interleave their turns.
type SimpleAgent struct {
	baseAgent
	history    *core.Conversation
	maxHistory int
}

// NewSimpleAgent creates a single-shot answering agent.
func NewSimpleAgent(name string, client model.Client, optFns ...func(o *SimpleOptions)) *SimpleAgent {
	opts := SimpleOptions{Options: defaultOptions()}
	for _, fn := range optFns {
		fn(&opts)
	}

	history := opts.History
	if history == nil {
		history = core.NewConversation()
	}

	return &SimpleAgent{
		baseAgent:  newBaseAgent(name, client, opts.Options),
		history:    history,
		maxHistory: opts.MaxHistory,
	}
}

// History returns the live conversation the agent appends to. Useful for
// persisting chats through a session store.
func (a *SimpleAgent) History() *core.Conversation { return a.history }

// Run sends the task (plus the retained history) to the model and returns
// the completion as the final answer.
func (a *SimpleAgent) Run(ctx context.Context, task string) (*core.RunResult, error) {
	start := time.Now()
	runID := core.NewID()

	a.logger.Info("agent.run.start", "agent", a.name, "run_id", runID, "strategy", "simple")

	system, err := prompt.RenderSystem(a.opts.SystemPrompt, prompt.DefaultSimple, "")
	if err != nil {
		return fatalResult(0, ""), fmt.Errorf("render system prompt: %w", err)
	}

	a.history.Append(core.NewUserMessage(task))

	// The system instruction lives outside the history so trimming the
	// window never drops it.
	messages := make([]core.Message, 0, a.history.Len()+1)
	messages = append(messages, core.NewSystemMessage(system))
	if a.maxHistory > 0 {
		messages = append(messages, a.history.Window(a.maxHistory)...)
	} else {
		messages = append(messages, a.history.Snapshot()...)
	}

	text, err := a.completeWithRetry(ctx, messages)
	if err != nil {
		a.logger.Error("agent.run.failed", "agent", a.name, "run_id", runID, "error", err.Error())
		return fatalResult(0, ""), err
	}

	a.history.Append(core.NewAssistantMessage(text))

	a.logger.Info("agent.run.done", "agent", a.name, "run_id", runID, "reason", string(core.TerminationAnswered),
		"duration_ms", time.Since(start).Milliseconds())

	return &core.RunResult{FinalText: text, Iterations: 1, Reason: core.TerminationAnswered}, nil
}
