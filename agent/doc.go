// Package agent contains the execution strategies that drive a model from a
// task to a final answer. The package focuses on three concerns:
//
//  1. Shared loop plumbing (iteration budgets, transient retry with backoff,
//     parse error recovery)
//  2. Concrete strategies: SimpleAgent (single completion with history),
//     ReActAgent (reason + act with tools), ReflectionAgent (draft, critique,
//     refine) and PlanAndSolveAgent (plan, execute steps, synthesize)
//  3. A uniform outcome contract – every run ends with a *core.RunResult
//     stating the final text, the iterations spent and why it stopped
//
// Design principles:
//   - Degradation over failure – budget exhaustion and recoverable tool
//     errors still produce a usable result; only fatal provider errors,
//     cancellation and (optionally) parse errors abort a run
//   - Tool failures are observations – the model sees the error text and can
//     route around it
//   - Strategies never talk to providers directly; they share one
//     model.Client and one tool.Registry
//
// The package intentionally keeps wire parsing, prompt templates and tool
// dispatch in their respective packages (action, prompt, tool) to avoid
// cyclic deps.
package agent
