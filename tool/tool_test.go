package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunctionToolFromStruct(t *testing.T) {
	type searchArgs struct {
		Query string `json:"query" description:"What to look for"`
		Limit int    `json:"limit,omitempty"`
	}

	ft := NewFunctionToolFromStruct("lookup", "Look something up", searchArgs{},
		func(_ context.Context, args map[string]any) (string, error) {
			return args["query"].(string), nil
		},
	)

	assert.Equal(t, "lookup", ft.Name())
	assert.Equal(t, "Look something up", ft.Description())

	schema := ft.Parameters()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"query"}, schema["required"], "omitempty fields must be optional")

	properties := schema["properties"].(map[string]any)
	query := properties["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "What to look for", query["description"])

	out, err := ft.Call(context.Background(), map[string]any{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestToolErrors(t *testing.T) {
	dup := &DuplicateToolError{Name: "calc"}
	assert.Contains(t, dup.Error(), `"calc"`)

	unknown := &UnknownToolError{Name: "nope"}
	assert.Contains(t, unknown.Error(), "not registered")

	cause := errors.New("bad value")
	argErr := &ToolArgumentError{Tool: "calc", Field: "expression", Detail: "bad value", Err: cause}
	assert.Contains(t, argErr.Error(), "invalid arguments")
	assert.ErrorIs(t, argErr, cause)

	execErr := &ToolExecutionError{Tool: "calc", Err: context.DeadlineExceeded}
	assert.Contains(t, execErr.Error(), "execution failed")
	assert.ErrorIs(t, execErr, context.DeadlineExceeded)
}
