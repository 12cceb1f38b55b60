package action

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Markers recognized by Parse. Prompt templates instruct the model to start a
// line with one of these; the parser only honors markers at line starts so
// prose mentioning the words cannot trigger an action.
const (
	// FinalAnswerMarker terminates a run with everything after it as answer text.
	FinalAnswerMarker = "Final Answer:"
	// ActionMarker requests a tool invocation: `Action: <tool>[<args>]`.
	ActionMarker = "Action:"
	// ThoughtMarker prefixes scratch reasoning. Informational only, never parsed
	// into an Action.
	ThoughtMarker = "Thought:"
	// PlanMarker optionally heads the step list a planning call produces.
	PlanMarker = "Plan:"
)

// PositionalArgKey keys a bare (non structured) argument text in a ToolCall's
// Args. The registry re-keys it to the tool's single required parameter.
const PositionalArgKey = "input"

var (
	finalAnswerRe = regexp.MustCompile(`(?m)^[ \t]*Final Answer:`)
	actionLineRe  = regexp.MustCompile(`(?m)^[ \t]*Action:[ \t]*(.*)$`)
	toolNameRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	planStepRe    = regexp.MustCompile(`(?m)^[ \t]*(?:\d+[.)]|[-*])[ \t]+(.+?)[ \t]*$`)
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// DefaultAcceptanceMarkers are the substrings (matched case-insensitively)
// that mark a critique as accepting the draft.
var DefaultAcceptanceMarkers = []string{"satisfactory", "no improvement"}

// Parse interprets one model completion as exactly one Action.
//
// Recognition order is deterministic: the structured marker whose line starts
// earliest in the text wins. A `Final Answer:` line yields FinalAnswer with
// the remainder of the text (trimmed) as answer. An `Action:` line yields a
// ToolCall when the rest of the line has the form `<tool>[<args>]`; a line
// that carries the marker but not that form yields ParseError, as does
// malformed argument text. Text with no marker at all is a FinalAnswer
// carrying the original text unchanged.
func Parse(text string) Action {
	finalLoc := finalAnswerRe.FindStringIndex(text)
	actionLoc := actionLineRe.FindStringSubmatchIndex(text)

	switch {
	case finalLoc != nil && (actionLoc == nil || finalLoc[0] <= actionLoc[0]):
		answer := text[finalLoc[1]:]
		return FinalAnswer{Text: strings.TrimSpace(answer)}
	case actionLoc != nil:
		line := text[actionLoc[2]:actionLoc[3]]
		return parseActionLine(text, line)
	default:
		return FinalAnswer{Text: text}
	}
}

// parseActionLine interprets the text after an `Action:` marker, expected to
// have the form `<tool>[<args>]`. The argument text runs to the last closing
// bracket on the line, so brackets inside arguments survive.
func parseActionLine(raw, line string) Action {
	line = strings.TrimSpace(line)

	open := strings.Index(line, "[")
	closing := strings.LastIndex(line, "]")
	if open < 0 || closing < open {
		return ParseError{Raw: raw, Reason: fmt.Sprintf("action %q is not of the form tool[args]", line)}
	}

	name := strings.TrimSpace(line[:open])
	if !toolNameRe.MatchString(name) {
		return ParseError{Raw: raw, Reason: fmt.Sprintf("invalid tool name %q", name)}
	}

	args, err := parseArgs(line[open+1 : closing])
	if err != nil {
		return ParseError{Raw: raw, Reason: err.Error()}
	}

	return ToolCall{Name: name, Args: args}
}

// parseArgs turns the bracketed argument text into a mapping. Three forms are
// accepted:
//
//	{...}            strict JSON object
//	k=v, k2=v2       key=value pairs; values are JSON scalars or bare strings
//	anything else    a single positional value under PositionalArgKey
//
// A text that commits to a structured form but breaks it is an error; it
// never degrades to a positional argument.
func parseArgs(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}, nil
	}

	if strings.HasPrefix(text, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(text), &args); err != nil {
			return nil, fmt.Errorf("invalid JSON arguments: %v", err)
		}
		return args, nil
	}

	if looksLikePairs(text) {
		return parsePairs(text)
	}

	return map[string]any{PositionalArgKey: text}, nil
}

// looksLikePairs reports whether the first comma-separated segment has the
// shape `ident=...`, committing the whole text to key=value parsing.
func looksLikePairs(text string) bool {
	first := text
	if i := strings.Index(text, ","); i >= 0 {
		first = text[:i]
	}
	eq := strings.Index(first, "=")
	if eq < 0 {
		return false
	}
	return identRe.MatchString(strings.TrimSpace(first[:eq]))
}

func parsePairs(text string) (map[string]any, error) {
	args := make(map[string]any)
	for _, part := range splitTopLevel(text) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.Index(part, "=")
		if eq < 0 {
			return nil, fmt.Errorf("argument %q is not of the form key=value", part)
		}
		key := strings.TrimSpace(part[:eq])
		if !identRe.MatchString(key) {
			return nil, fmt.Errorf("invalid argument name %q", key)
		}
		args[key] = parseScalar(strings.TrimSpace(part[eq+1:]))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no key=value arguments found in %q", text)
	}
	return args, nil
}

// splitTopLevel splits on commas that are not inside quotes, brackets or
// braces, so values like lists and quoted strings survive intact.
func splitTopLevel(text string) []string {
	var (
		parts   []string
		start   int
		depth   int
		inQuote rune
	)
	for i, r := range text {
		switch {
		case inQuote != 0:
			if r == inQuote && (i == 0 || text[i-1] != '\\') {
				inQuote = 0
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == '[' || r == '{' || r == '(':
			depth++
		case r == ']' || r == '}' || r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	parts = append(parts, text[start:])
	return parts
}

// parseScalar decodes a value as a JSON scalar when possible (numbers,
// booleans, null, quoted strings) and falls back to the bare string.
func parseScalar(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}
	return strings.Trim(text, `'`)
}

// ParsePlan extracts an ordered step list from a planning completion. Steps
// are numbered (`1.`, `2)`) or bulleted (`-`, `*`) lines; an optional `Plan:`
// header and surrounding prose are ignored. A completion with no step lines
// yields a ParseError.
func ParsePlan(text string) ([]PlanStep, error) {
	matches := planStepRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ParseError{Raw: text, Reason: "no plan steps found"}
	}

	steps := make([]PlanStep, 0, len(matches))
	for _, m := range matches {
		desc := strings.TrimSpace(m[1])
		if desc == "" {
			continue
		}
		steps = append(steps, PlanStep{Description: desc})
	}
	if len(steps) == 0 {
		return nil, ParseError{Raw: text, Reason: "no plan steps found"}
	}
	return steps, nil
}

// ParseReflection interprets a critique completion. The critique is satisfied
// when it contains any of the given acceptance markers (case-insensitive);
// nil markers mean DefaultAcceptanceMarkers.
func ParseReflection(text string, markers []string) Reflection {
	if markers == nil {
		markers = DefaultAcceptanceMarkers
	}
	lower := strings.ToLower(text)
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return Reflection{Critique: strings.TrimSpace(text), Satisfied: true}
		}
	}
	return Reflection{Critique: strings.TrimSpace(text)}
}
