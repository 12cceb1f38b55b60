package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
)

func quietReflection(o *ReflectionOptions) {
	testOptions(&o.Options)
}

func TestReflectionAgent_AcceptsSatisfactoryDraft(t *testing.T) {
	client := model.NewScriptedClient(
		"The answer is 42.",
		"SATISFACTORY",
	)

	a := NewReflectionAgent("careful", client, quietReflection)

	result, err := a.Run(context.Background(), "meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, "The answer is 42.", result.FinalText)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, core.TerminationAnswered, result.Reason)
	assert.Equal(t, 2, client.Calls(), "one draft, one critique")
}

func TestReflectionAgent_RefinesUntilAccepted(t *testing.T) {
	client := model.NewScriptedClient(
		"Draft one.",
		"Too vague, add the actual number.",
		"Draft two: the answer is 42.",
		"SATISFACTORY",
	)

	a := NewReflectionAgent("careful", client, quietReflection)

	result, err := a.Run(context.Background(), "meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, "Draft two: the answer is 42.", result.FinalText)
	assert.Equal(t, 2, result.Iterations, "initial draft plus one refinement")
	assert.Equal(t, core.TerminationAnswered, result.Reason)
	assert.Equal(t, 4, client.Calls())

	// The refine request carries both the previous draft and the critique.
	refineRequest := client.Requests()[2]
	user := refineRequest[len(refineRequest)-1]
	assert.Contains(t, user.Content, "Draft one.")
	assert.Contains(t, user.Content, "Too vague")
}

func TestReflectionAgent_BudgetExhaustedReturnsLastDraft(t *testing.T) {
	client := model.NewScriptedClient(
		"Only draft.",
		"Still not good enough.",
	)

	a := NewReflectionAgent("limited", client, quietReflection,
		func(o *ReflectionOptions) { o.MaxIterations = 1 },
	)

	result, err := a.Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, "Only draft.", result.FinalText)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, core.TerminationMaxIterations, result.Reason)
	assert.Equal(t, 2, client.Calls())
}

func TestReflectionAgent_CustomAcceptanceMarkers(t *testing.T) {
	client := model.NewScriptedClient(
		"Draft.",
		"lgtm, ship it",
	)

	a := NewReflectionAgent("custom", client, quietReflection,
		func(o *ReflectionOptions) { o.AcceptanceMarkers = []string{"LGTM"} },
	)

	result, err := a.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.True(t, result.Answered())
	assert.Equal(t, "Draft.", result.FinalText)
}

func TestReflectionAgent_CustomAcceptanceFunc(t *testing.T) {
	client := model.NewScriptedClient(
		"Short.",
		"whatever the critique says",
	)

	a := NewReflectionAgent("custom", client, quietReflection,
		func(o *ReflectionOptions) {
			o.AcceptanceFunc = func(string) bool { return true }
		},
	)

	result, err := a.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.True(t, result.Answered())
	assert.Equal(t, 2, client.Calls())
}

func TestReflectionAgent_FatalOnDraft(t *testing.T) {
	client := model.NewScriptedClient()
	client.AddError(model.NewFatalError("openai", "invalid api key", nil))

	a := NewReflectionAgent("doomed", client, quietReflection)

	result, err := a.Run(context.Background(), "task")
	require.Error(t, err)
	assert.Equal(t, core.TerminationFatalError, result.Reason)
	assert.Equal(t, 0, result.Iterations)
}

func TestReflectionAgent_FatalDuringCritiqueKeepsDraft(t *testing.T) {
	client := model.NewScriptedClient("Best effort draft.")
	client.AddError(model.NewFatalError("openai", "model removed", nil))

	a := NewReflectionAgent("unlucky", client, quietReflection)

	result, err := a.Run(context.Background(), "task")
	require.Error(t, err)
	assert.Equal(t, core.TerminationFatalError, result.Reason)
	assert.Equal(t, "Best effort draft.", result.FinalText, "the draft is still the best available text")
	assert.Equal(t, 1, result.Iterations)
}
