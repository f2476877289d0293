package reagent

import "fmt"

// DuplicateToolError is returned by Registry.Register when a tool with the
// same name is already registered.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownToolError is returned by Registry.Resolve when no tool with the
// given name exists.
//
// When the model requests an unknown tool during a run, the loop does not
// fail: the error text is appended as a tool-role observation so the model
// can self-correct.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ToolExecutionError wraps a failure from a tool handler. Like
// UnknownToolError it is recoverable: the loop reports it back to the model
// as an observation instead of terminating the run.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// IterationBudgetError terminates a run when the configured maximum number of
// tool-dispatch rounds has been reached without the model producing a final
// answer.
type IterationBudgetError struct {
	MaxIterations int
}

func (e *IterationBudgetError) Error() string {
	return fmt.Sprintf("iteration budget exceeded: %d tool-dispatch rounds", e.MaxIterations)
}

// ModelUnavailableError indicates the model capability could not be reached
// or returned a non-retryable failure. The loop never retries; retry policy
// belongs to the caller.
type ModelUnavailableError struct {
	ModelID string
	Err     error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %q unavailable: %v", e.ModelID, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// ModelRateLimitedError indicates the model capability rejected the call due
// to rate limiting. Surfaced to the caller as-is, never silently retried.
type ModelRateLimitedError struct {
	ModelID string
	Err     error
}

func (e *ModelRateLimitedError) Error() string {
	return fmt.Sprintf("model %q rate limited: %v", e.ModelID, e.Err)
}

func (e *ModelRateLimitedError) Unwrap() error {
	return e.Err
}

// CancelledError terminates a run when the caller's context is cancelled or
// its deadline passes. Cancellation is observed at state transitions: before
// each model call and before tool dispatch.
type CancelledError struct {
	// Stage names the transition at which cancellation was observed,
	// e.g. "model_call" or "tool_dispatch".
	Stage string
	Err   error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("run cancelled before %s: %v", e.Stage, e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
