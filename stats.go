package reagent

import "time"

// RunStats aggregates accounting for one run. A run owns its stats
// exclusively; the struct is returned by value on the Result and never
// shared between runs.
type RunStats struct {
	// Iterations is the number of completed tool-dispatch rounds.
	Iterations int

	// ModelCalls is the number of model invocations.
	ModelCalls int

	// InputTokens and OutputTokens sum the provider-reported usage across
	// all model calls. Zero when the provider reports no usage.
	InputTokens  int
	OutputTokens int

	// ToolCalls is the total number of dispatched tool calls, including
	// those that produced error observations.
	ToolCalls int

	// ToolCallsByName counts dispatches per tool name. Unresolved names are
	// counted under the name the model requested.
	ToolCallsByName map[string]int

	// ToolErrors counts dispatches that produced error observations.
	ToolErrors int

	// Duration is wall-clock time from Run entry to the terminal state.
	Duration time.Duration
}

func newRunStats() RunStats {
	return RunStats{ToolCallsByName: make(map[string]int)}
}

func (s *RunStats) recordModelCall(usage *Usage) {
	s.ModelCalls++
	if usage != nil {
		s.InputTokens += usage.InputTokens
		s.OutputTokens += usage.OutputTokens
	}
}

func (s *RunStats) recordToolCall(name string, isError bool) {
	s.ToolCalls++
	s.ToolCallsByName[name]++
	if isError {
		s.ToolErrors++
	}
}
