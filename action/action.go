package action

import "fmt"

// Action is the structured intent extracted from one model completion.
//
// It is a closed set; the unexported marker method keeps the variants in this
// package so switch statements over Action stay exhaustive.
type Action interface {
	isAction()
}

// FinalAnswer means the model concluded with answer text.
type FinalAnswer struct {
	Text string `json:"text"`
}

func (FinalAnswer) isAction() {}

// ToolCall means the model requested a tool invocation. Args is either the
// parsed argument mapping or, for bare argument text, a single entry keyed by
// PositionalArgKey that the registry re-keys against the tool's schema.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

func (ToolCall) isAction() {}

// PlanStep is one step of a decomposed plan, in execution order.
type PlanStep struct {
	Description string `json:"description"`
}

func (PlanStep) isAction() {}

// Reflection is a critique of a draft answer. Satisfied reports whether the
// critique contained a recognized acceptance marker.
type Reflection struct {
	Critique  string `json:"critique"`
	Satisfied bool   `json:"satisfied"`
}

func (Reflection) isAction() {}

// ParseError means the completion attempted a structured form the parser
// could not interpret. It is both an Action variant and an error, so loops
// can branch on it and callers can propagate it.
type ParseError struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func (ParseError) isAction() {}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}
