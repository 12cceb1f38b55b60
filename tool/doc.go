// Package tool implements the capability subsystem that lets agents invoke
// structured external functions (APIs, computations, side effects) with
// schema validated arguments and consistent error handling.
//
// The Registry is the single dispatch point: it enforces name uniqueness,
// validates arguments against each tool's schema before the tool runs, bounds
// every invocation with a configurable timeout and contains panics. Tools
// themselves stay small; cross-cutting policy lives here, not in each tool.
//
// Builtin tools: a calculator (safe arithmetic evaluation) and a web search
// client. Chain composes tools into sequential pipelines; ParallelExecutor
// fans independent calls out concurrently.
package tool
