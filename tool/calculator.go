package tool

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Calculator evaluates arithmetic expressions without shelling out to the
// model. It supports +, -, *, /, %, ^ (and ** as an alias), parentheses,
// unary minus, a set of math functions and the constants pi and e.
//
// Expressions are parsed by a small recursive descent parser; nothing is
// ever eval'd, so model supplied input cannot execute code.
type Calculator struct{}

// NewCalculator creates the builtin calculator tool.
func NewCalculator() *Calculator { return &Calculator{} }

// Name returns "calculator".
func (c *Calculator) Name() string { return "calculator" }

// Description returns the catalog description shown to models.
func (c *Calculator) Description() string {
	return "Evaluate an arithmetic expression. Supports +, -, *, /, %, ^, parentheses, " +
		"functions (sqrt, sin, cos, tan, log, log10, exp, abs, floor, ceil, round, pow, min, max) " +
		"and the constants pi and e."
}

// Parameters returns the argument schema: a single required expression string.
func (c *Calculator) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": `The arithmetic expression to evaluate, e.g. "2 * (3 + 4)"`,
			},
		},
		"required": []string{"expression"},
	}
}

// Call evaluates the expression argument and returns the numeric result as
// text. Integral results render without a decimal point.
func (c *Calculator) Call(_ context.Context, args map[string]any) (string, error) {
	expression, _ := args["expression"].(string)
	if strings.TrimSpace(expression) == "" {
		return "", fmt.Errorf("expression must not be empty")
	}

	value, err := evalExpression(expression)
	if err != nil {
		return "", err
	}

	return formatNumber(value), nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Grammar, loosest binding first:
//
//	expr  := term (('+'|'-') term)*
//	term  := unary (('*'|'/'|'%') unary)*
//	unary := ('-'|'+') unary | power
//	power := atom (('^'|'**') unary)?        right associative, -2^2 == -4
//	atom  := number | ident | ident '(' expr (',' expr)* ')' | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}

	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, p.errorf("unexpected %q", p.input[p.pos:])
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}

	return v, nil
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("invalid expression at position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

// peek skips whitespace and returns the current byte without consuming it,
// or 0 at end of input.
func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		switch {
		case p.peek() == '*' && !p.peekPower():
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.peek() == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.peek() == '%':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	case '+':
		p.pos++
		return p.parseUnary()
	default:
		return p.parsePower()
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}

	switch {
	case p.peek() == '^':
		p.pos++
	case p.peekPower():
		p.pos += 2
	default:
		return base, nil
	}

	// Right associative exponent; parseUnary also admits 2^-3.
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	return math.Pow(base, exp), nil
}

// peekPower reports whether the next token is the ** power alias.
func (p *exprParser) peekPower() bool {
	p.skipSpace()
	return p.pos+1 < len(p.input) && p.input[p.pos] == '*' && p.input[p.pos+1] == '*'
}

func (p *exprParser) parseAtom() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, p.errorf("unexpected end of expression")
	}

	ch := p.input[p.pos]
	switch {
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(ch) || ch == '.':
		return p.parseNumber()
	case isIdentStart(ch):
		return p.parseIdent()
	default:
		return 0, p.errorf("unexpected character %q", string(ch))
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}

	// Scientific notation: only consume the exponent when digits follow,
	// so "2e" stays a trailing-garbage error instead of a bad number.
	if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		next := p.pos + 1
		if next < len(p.input) && (p.input[next] == '+' || p.input[next] == '-') {
			next++
		}
		if next < len(p.input) && isDigit(p.input[next]) {
			p.pos = next
			for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
				p.pos++
			}
		}
	}

	text := p.input[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, p.errorf("invalid number %q", text)
	}

	return v, nil
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	if p.peek() != '(' {
		if c, ok := calcConstants[name]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("unknown identifier %q", name)
	}
	p.pos++

	var args []float64
	if p.peek() != ')' {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			args = append(args, v)

			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}

	if p.peek() != ')' {
		return 0, p.errorf("missing closing parenthesis in call to %q", name)
	}
	p.pos++

	return applyCalcFunc(name, args)
}

var calcConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var calcUnaryFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"exp":   math.Exp,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
}

func applyCalcFunc(name string, args []float64) (float64, error) {
	if fn, ok := calcUnaryFuncs[name]; ok {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return checkFinite(name, fn(args[0]))
	}

	switch name {
	case "pow":
		if len(args) != 2 {
			return 0, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return checkFinite(name, math.Pow(args[0], args[1]))
	case "min", "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("%s expects at least 1 argument", name)
		}
		v := args[0]
		for _, a := range args[1:] {
			if name == "min" {
				v = math.Min(v, a)
			} else {
				v = math.Max(v, a)
			}
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unknown function %q", name)
	}
}

// checkFinite rejects domain errors (sqrt(-1), log(0)) instead of letting
// NaN propagate silently into observations.
func checkFinite(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: result is not a finite number", name)
	}
	return v, nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
