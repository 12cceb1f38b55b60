package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/tool"
)

func testOptions(o *Options) {
	o.Logger = logging.NewNoOpLogger()
	o.Retry = RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func newCalcRegistry(t *testing.T) *tool.Registry {
	t.Helper()

	r := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = logging.NewNoOpLogger() })
	require.NoError(t, r.Register(tool.NewCalculator()))

	return r
}

// -------------------- happy path --------------------

func TestReActAgent_CalculatorFlow(t *testing.T) {
	client := model.NewScriptedClient(
		"Thought: I should calculate this.\nAction: calculator[{\"expression\": \"2+2\"}]",
		"Thought: I now know the answer.\nFinal Answer: 4",
	)

	a := NewReActAgent("math", client, newCalcRegistry(t), testOptions)

	result, err := a.Run(context.Background(), "What is 2+2?")
	require.NoError(t, err)

	assert.Equal(t, "4", result.FinalText)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, core.TerminationAnswered, result.Reason)
	assert.True(t, result.Answered())

	// The second completion request must carry the recorded tool result.
	requests := client.Requests()
	require.Len(t, requests, 2)

	second := requests[1]
	require.Len(t, second, 4) // system, user, assistant, tool
	assert.Equal(t, core.RoleSystem, second[0].Role)
	assert.Equal(t, core.RoleUser, second[1].Role)
	assert.Equal(t, core.RoleAssistant, second[2].Role)
	assert.Equal(t, core.RoleTool, second[3].Role)
	assert.Equal(t, "calculator", second[3].ToolName)
	assert.Equal(t, "4", second[3].Content)
}

func TestReActAgent_PositionalArguments(t *testing.T) {
	client := model.NewScriptedClient(
		"Action: calculator[6 * 7]",
		"Final Answer: 42",
	)

	a := NewReActAgent("math", client, newCalcRegistry(t), testOptions)

	result, err := a.Run(context.Background(), "What is 6*7?")
	require.NoError(t, err)
	assert.Equal(t, "42", result.FinalText)

	second := client.Requests()[1]
	assert.Equal(t, "42", second[len(second)-1].Content)
}

func TestReActAgent_SystemPromptListsTools(t *testing.T) {
	client := model.NewScriptedClient("Final Answer: done")

	a := NewReActAgent("math", client, newCalcRegistry(t), testOptions)

	_, err := a.Run(context.Background(), "anything")
	require.NoError(t, err)

	first := client.Requests()[0]
	require.Equal(t, core.RoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "- calculator:")
}

// -------------------- degradation --------------------

func TestReActAgent_MaxIterationsStillInvokesTool(t *testing.T) {
	client := model.NewScriptedClient(
		"Thought: one more lookup.\nAction: probe[go]",
	)

	invoked := false
	r := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = logging.NewNoOpLogger() })
	require.NoError(t, r.RegisterFunction("probe", "Probe something",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "string"},
			},
			"required": []string{"input"},
		},
		func(_ context.Context, _ map[string]any) (string, error) {
			invoked = true
			return "probed", nil
		},
	))

	a := NewReActAgent("probe", client, r, testOptions, func(o *Options) { o.MaxIterations = 1 })

	result, err := a.Run(context.Background(), "probe go")
	require.NoError(t, err)

	assert.Equal(t, core.TerminationMaxIterations, result.Reason)
	assert.Equal(t, 1, result.Iterations)
	assert.True(t, invoked, "a requested tool call must run even when the budget then expires")
	assert.Contains(t, result.FinalText, "Action: probe[go]", "best-effort text is the last completion")
	assert.Equal(t, 1, client.Calls())
}

func TestReActAgent_ToolErrorBecomesObservation(t *testing.T) {
	client := model.NewScriptedClient(
		"Action: flaky[x]",
		"Final Answer: recovered",
	)

	r := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = logging.NewNoOpLogger() })
	require.NoError(t, r.RegisterFunction("flaky", "Always fails",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "string"},
			},
			"required": []string{"input"},
		},
		func(_ context.Context, _ map[string]any) (string, error) {
			return "", errors.New("backend down")
		},
	))

	a := NewReActAgent("resilient", client, r, testOptions)

	result, err := a.Run(context.Background(), "try it")
	require.NoError(t, err)

	assert.Equal(t, core.TerminationAnswered, result.Reason)
	assert.Equal(t, "recovered", result.FinalText)

	second := client.Requests()[1]
	observation := second[len(second)-1]
	assert.Equal(t, core.RoleTool, observation.Role)
	assert.Contains(t, observation.Content, "ERROR:")
	assert.Contains(t, observation.Content, "backend down")
}

func TestReActAgent_UnknownToolBecomesObservation(t *testing.T) {
	client := model.NewScriptedClient(
		"Action: nonexistent[x]",
		"Final Answer: ok",
	)

	a := NewReActAgent("lost", client, newCalcRegistry(t), testOptions)

	result, err := a.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.True(t, result.Answered())

	second := client.Requests()[1]
	assert.Contains(t, second[len(second)-1].Content, "not registered")
}

// -------------------- parse errors --------------------

func TestReActAgent_ParseErrorGetsCorrectiveNote(t *testing.T) {
	client := model.NewScriptedClient(
		"Action: calculator 2+2", // missing brackets
		"Final Answer: fine",
	)

	a := NewReActAgent("sloppy", client, newCalcRegistry(t), testOptions)

	result, err := a.Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, core.TerminationAnswered, result.Reason)
	assert.Equal(t, 2, result.Iterations)

	second := client.Requests()[1]
	note := second[len(second)-1]
	assert.Equal(t, core.RoleSystem, note.Role)
	assert.Contains(t, note.Content, "could not be interpreted")
}

func TestReActAgent_StopOnParseError(t *testing.T) {
	client := model.NewScriptedClient(
		"Action: calculator 2+2",
		"Final Answer: never reached",
	)

	a := NewReActAgent("strict", client, newCalcRegistry(t), testOptions,
		func(o *Options) { o.StopOnParseError = true },
	)

	result, err := a.Run(context.Background(), "task")
	require.Error(t, err)

	var parseErr action.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, core.TerminationFatalError, result.Reason)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 1, client.Calls())
}

// -------------------- fatal conditions --------------------

func TestReActAgent_FatalProviderError(t *testing.T) {
	client := model.NewScriptedClient()
	client.AddError(model.NewFatalError("openai", "invalid api key", nil))

	a := NewReActAgent("doomed", client, newCalcRegistry(t), testOptions)

	result, err := a.Run(context.Background(), "task")
	require.Error(t, err)

	var provErr *model.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, model.ErrorKindFatal, provErr.Kind)
	assert.Equal(t, core.TerminationFatalError, result.Reason)
	assert.Equal(t, 0, result.Iterations)
	assert.Equal(t, 1, client.Calls(), "fatal errors must not be retried")
}

func TestReActAgent_CancelledContext(t *testing.T) {
	client := model.NewScriptedClient("Final Answer: never")

	a := NewReActAgent("cancelled", client, newCalcRegistry(t), testOptions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := a.Run(ctx, "task")
	require.Error(t, err)
	assert.Equal(t, core.TerminationFatalError, result.Reason)
	assert.ErrorIs(t, err, context.Canceled)
}
