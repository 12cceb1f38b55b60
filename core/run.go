package core

// TerminationReason states why a run ended.
type TerminationReason string

const (
	// TerminationAnswered means the model produced a final answer.
	TerminationAnswered TerminationReason = "answered"
	// TerminationMaxIterations means the iteration budget ran out before a
	// final answer; the result carries the last assistant text as best effort.
	TerminationMaxIterations TerminationReason = "max_iterations"
	// TerminationFatalError means an unrecoverable condition (provider auth
	// failure, exhausted retries, cancellation) ended the run.
	TerminationFatalError TerminationReason = "fatal_error"
)

// RunResult is the outcome of one agent run. Every run produces one, even on
// degradation: FinalText is always the best available answer text.
type RunResult struct {
	// FinalText is the answer (or best-effort text when the run degraded).
	FinalText string `json:"final_text"`
	// Iterations counts the loop passes the agent performed. Each agent type
	// documents what one iteration means for it.
	Iterations int `json:"iterations"`
	// Reason states how the run terminated.
	Reason TerminationReason `json:"reason"`
}

// Answered reports whether the run reached a genuine final answer.
func (r *RunResult) Answered() bool {
	return r.Reason == TerminationAnswered
}
