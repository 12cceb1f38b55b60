// Package action turns raw model completions into structured intents.
//
// The Action interface is a closed tagged union: FinalAnswer, ToolCall,
// PlanStep, Reflection and ParseError. Every parse yields exactly one
// variant; there is no unparseable case. Text without a recognized marker is
// a FinalAnswer by policy, so a model that ignores the expected format
// degrades gracefully instead of looping forever.
//
// The textual markers recognized here (see Parse) are the wire format between
// the model and the engine. They must stay in lockstep with the templates in
// the prompt package: changing one side requires changing the other.
package action
