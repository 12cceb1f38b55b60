package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/reagent/action"
	"github.com/hupe1980/reagent/internal/util"
)

// ChainStep is one link of a Chain: which tool to run and how to build its
// input from earlier results.
type ChainStep struct {
	// Tool is the registry name of the tool to invoke.
	Tool string
	// InputTemplate renders the step input. {{.input}} is the chain input;
	// {{.<output key>}} references earlier step results.
	InputTemplate string
	// OutputKey stores the step result for later templates. Defaults to
	// step_<n>_result.
	OutputKey string
}

// Chain runs tools as a sequential pipeline: each step's input template is
// rendered from the chain input and all earlier step outputs, the tool is
// invoked through the registry (validation, timeout and panic containment
// apply per step) and its output becomes available to the steps after it.
// The last step's output is the chain result.
//
// Chain itself implements Tool, so a configured pipeline can be registered
// and called by agents like any other tool.
//
// Add all steps before first use; AddStep is not synchronized.
type Chain struct {
	registry    *Registry
	name        string
	description string
	steps       []ChainStep
}

// NewChain creates an empty pipeline dispatching through registry.
func NewChain(registry *Registry, name, description string) *Chain {
	return &Chain{
		registry:    registry,
		name:        name,
		description: description,
	}
}

// AddStep appends a step and returns the chain for fluent configuration.
// An empty outputKey defaults to step_<n>_result.
func (c *Chain) AddStep(toolName, inputTemplate, outputKey string) *Chain {
	if outputKey == "" {
		outputKey = fmt.Sprintf("step_%d_result", len(c.steps)+1)
	}

	c.steps = append(c.steps, ChainStep{
		Tool:          toolName,
		InputTemplate: inputTemplate,
		OutputKey:     outputKey,
	})

	return c
}

// Steps returns a copy of the configured steps.
func (c *Chain) Steps() []ChainStep {
	out := make([]ChainStep, len(c.steps))
	copy(out, c.steps)
	return out
}

// Name returns the chain's registry name.
func (c *Chain) Name() string { return c.name }

// Description returns the chain's catalog description.
func (c *Chain) Description() string { return c.description }

// Parameters returns the argument schema: a single required input string.
func (c *Chain) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "The input passed to the first step's template.",
			},
		},
		"required": []string{"input"},
	}
}

// Call implements Tool by running the pipeline on the input argument.
func (c *Chain) Call(ctx context.Context, args map[string]any) (string, error) {
	input, _ := args["input"].(string)
	return c.Execute(ctx, input)
}

// Execute runs the pipeline on input. A step that fails (template variable
// missing, unknown tool, tool error) aborts the chain with an error naming
// the step; later steps do not run.
func (c *Chain) Execute(ctx context.Context, input string) (string, error) {
	if len(c.steps) == 0 {
		return "", fmt.Errorf("chain %q has no steps", c.name)
	}

	vars := map[string]any{"input": input}
	result := input

	for i, step := range c.steps {
		rendered, err := util.RenderTemplate(step.InputTemplate, vars)
		if err != nil {
			return "", fmt.Errorf("chain %q step %d: render input: %w", c.name, i+1, err)
		}

		output, err := c.registry.Invoke(ctx, step.Tool, map[string]any{action.PositionalArgKey: rendered})
		if err != nil {
			return "", fmt.Errorf("chain %q step %d (%s): %w", c.name, i+1, step.Tool, err)
		}

		vars[step.OutputKey] = output
		result = output
	}

	return result, nil
}
