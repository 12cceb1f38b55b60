package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/reagent/internal/util"
)

// DefaultSimple is the system instruction for single-shot answering.
const DefaultSimple = `You are a helpful assistant. Answer the user clearly and concisely.`

// DefaultReAct is the system instruction for the reasoning and acting loop.
// The {{.tools}} variable receives the registry's tool catalog.
const DefaultReAct = `You are a reasoning agent that solves tasks step by step, using tools when they help.

Available tools:
{{.tools}}

Respond using exactly this format:

Thought: your reasoning about what to do next
Action: tool_name[arguments]

or, once you can answer the task:

Thought: your reasoning
Final Answer: the answer to the task

Rules:
- Emit exactly one Action or one Final Answer per response.
- Arguments may be a bare value (Action: calculator[2+2]), key=value pairs, or a JSON object.
- After each Action you receive an Observation with the tool result.
- Never write an Observation yourself.`

// DefaultReflectionDraft is the system instruction for draft and refine calls.
const DefaultReflectionDraft = `You are a careful assistant. Produce the best answer you can to the user's task.`

// DefaultReflectionCritique is the system instruction for critique calls.
// The SATISFACTORY marker is what ParseReflection detects as acceptance.
const DefaultReflectionCritique = `You review draft answers. Point out concrete flaws: factual errors, gaps, contradictions, unclear reasoning.
If the draft needs no changes, reply with exactly: SATISFACTORY`

// DefaultPlan is the system instruction for the planning call.
const DefaultPlan = `You break a task into a short sequence of concrete steps.

Respond with a numbered list, one step per line, and nothing else:
1. first step
2. second step

Each step must be self-contained enough to execute on its own.`

// DefaultSynthesis is the system instruction for the final synthesis call.
const DefaultSynthesis = `You combine step results into one final answer to the original task.
Some steps may be marked FAILED; work around them and state honestly what is missing.`

const critiqueUserTmpl = `Task:
{{.task}}

Draft answer:
{{.draft}}

Critique the draft.`

const refineUserTmpl = `Task:
{{.task}}

Previous draft:
{{.draft}}

Critique:
{{.critique}}

Write an improved answer that addresses the critique. Output only the improved answer.`

const synthesisUserTmpl = `Task:
{{.task}}

Step results:
{{.steps}}

Give the final answer to the task.`

const stepUserTmpl = `Original task:
{{.task}}

Completed steps:
{{.completed}}

Execute this step and report its outcome:
{{.step}}`

// RenderSystem renders a (possibly user supplied) system prompt template.
// An empty template falls back to fallback. The tools variable is always
// available; templates that do not reference it are fine.
func RenderSystem(tmpl, fallback, tools string) (string, error) {
	if tmpl == "" {
		tmpl = fallback
	}
	return util.RenderTemplate(tmpl, map[string]any{"tools": tools})
}

// CritiqueUser renders the user turn of a critique call.
func CritiqueUser(task, draft string) string {
	return util.MustRenderTemplate(critiqueUserTmpl, map[string]any{"task": task, "draft": draft})
}

// RefineUser renders the user turn of a refine call.
func RefineUser(task, draft, critique string) string {
	return util.MustRenderTemplate(refineUserTmpl, map[string]any{"task": task, "draft": draft, "critique": critique})
}

// SynthesisUser renders the user turn of the synthesis call from the step
// report produced by StepReport.
func SynthesisUser(task, stepReport string) string {
	return util.MustRenderTemplate(synthesisUserTmpl, map[string]any{"task": task, "steps": stepReport})
}

// PlanUser renders the user turn of a planning call.
func PlanUser(task string) string {
	return "Plan the steps for this task:\n" + task
}

// StepUser renders the user turn that starts one plan step's execution.
// completed carries the report of earlier steps; empty means none yet.
func StepUser(task, step, completed string) string {
	if completed == "" {
		completed = "(none yet)"
	}
	return util.MustRenderTemplate(stepUserTmpl, map[string]any{"task": task, "step": step, "completed": completed})
}

// PlanCorrectiveNote is appended after a planning completion with no
// recognizable steps, steering the model back onto the list format.
func PlanCorrectiveNote(reason string) string {
	return fmt.Sprintf("Your previous response could not be interpreted as a plan (%s). "+
		"Respond with a numbered list of steps, one per line, and nothing else.", reason)
}

// CorrectiveNote is appended as a system message after an uninterpretable
// completion, steering the model back onto the wire format.
func CorrectiveNote(reason string) string {
	return fmt.Sprintf("Your previous response could not be interpreted (%s). "+
		"Respond with exactly one `Action: tool_name[arguments]` line or one `Final Answer: ...` line.", reason)
}

// StepOutcome is one plan step's result for synthesis reporting.
type StepOutcome struct {
	Description string
	Result      string
	Failed      bool
}

// StepReport renders executed plan steps for the synthesis call. Failed steps
// are marked so the model can work around them.
func StepReport(steps []StepOutcome) string {
	var sb strings.Builder
	for i, step := range steps {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step.Description)
		if step.Failed {
			fmt.Fprintf(&sb, "   FAILED: %s", step.Result)
		} else {
			fmt.Fprintf(&sb, "   Result: %s", step.Result)
		}
	}
	return sb.String()
}
