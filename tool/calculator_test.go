package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- evaluation --------------------

func TestCalculator_Evaluate(t *testing.T) {
	tests := []struct {
		expression string
		want       string
	}{
		{"2+2", "4"},
		{"2 + 3 * 4", "14"},
		{"2 * (3 + 4)", "14"},
		{"10 / 4", "2.5"},
		{"10 % 3", "1"},
		{"2^10", "1024"},
		{"2**3**2", "512"}, // right associative: 2^(3^2)
		{"-2^2", "-4"},     // unary minus binds looser than power
		{"2^-1", "0.5"},
		{"-(3 + 4)", "-7"},
		{"1e3 + 1", "1001"},
		{"sqrt(16)", "4"},
		{"abs(-5)", "5"},
		{"round(2.6)", "3"},
		{"floor(2.9)", "2"},
		{"pow(2, 8)", "256"},
		{"min(3, 1, 2)", "1"},
		{"max(3, 1, 2)", "3"},
		{"log(1)", "0"},
		{"exp(0)", "1"},
		{"cos(0)", "1"},
		{"pi", "3.141592653589793"},
		{"2 * pi * 10", "62.83185307179586"},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			calc := NewCalculator()

			out, err := calc.Call(context.Background(), map[string]any{"expression": tt.expression})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCalculator_Errors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		contains   string
	}{
		{"division by zero", "1/0", "division by zero"},
		{"modulo by zero", "5 % 0", "division by zero"},
		{"unknown identifier", "foo + 1", "unknown identifier"},
		{"unknown function", "foo(1)", "unknown function"},
		{"dangling operator", "2 +", "unexpected end"},
		{"unbalanced parens", "(2+3", "missing closing parenthesis"},
		{"trailing garbage", "2 4", "unexpected"},
		{"domain error", "sqrt(-1)", "not a finite number"},
		{"wrong arity", "sqrt(1, 2)", "expects 1 argument"},
		{"empty call", "pow()", "expects 2 arguments"},
		{"letters", "drop table users", "unknown identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator()

			_, err := calc.Call(context.Background(), map[string]any{"expression": tt.expression})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCalculator_EmptyExpression(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Call(context.Background(), map[string]any{"expression": "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

// -------------------- schema --------------------

func TestCalculator_Schema(t *testing.T) {
	calc := NewCalculator()

	assert.Equal(t, "calculator", calc.Name())
	assert.NotEmpty(t, calc.Description())
	assert.Equal(t, []string{"expression"}, calc.Parameters()["required"])
}
