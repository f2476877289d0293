package reagent

import "context"

// Hooks allow observing a run at its suspension points. Implement any subset
// of the hook interfaces on one value and register it with [WithHooks]; the
// loop fires whichever interfaces the value implements, in registration
// order.
//
// Hooks are observational: they cannot modify the transcript or abort the
// run, and they should not return errors or panic. A logging hook is the
// typical use:
//
//	type logHook struct{ log *log.Logger }
//
//	func (h *logHook) OnAfterModelCall(ctx context.Context, e reagent.AfterModelCallEvent) {
//	    h.log.Printf("model call %d: kind=%d in %v", e.Iteration, e.Response.Kind, e.Duration)
//	}
//
//	loop := reagent.NewLoop(model, cfg, reagent.WithHooks(&logHook{log: logger}))

// BeforeModelCallEvent is fired immediately before each model call.
type BeforeModelCallEvent struct {
	// Iteration is the 1-indexed model turn within the run.
	Iteration int
	Request   *ModelRequest
}

// AfterModelCallEvent is fired after each model call, on success or failure.
type AfterModelCallEvent struct {
	Iteration int
	Request   *ModelRequest
	Response  *ModelResponse
	Err       error
}

// BeforeToolCallEvent is fired before each tool dispatch.
type BeforeToolCallEvent struct {
	Iteration int
	Call      ToolCallRequest
}

// AfterToolCallEvent is fired after each tool dispatch. Err is set when the
// dispatch produced an error observation (unknown tool, invalid arguments,
// or handler failure).
type AfterToolCallEvent struct {
	Iteration int
	Call      ToolCallRequest
	Result    ToolResult
	Err       error
}

// AfterRunEvent is fired once when a run reaches a terminal state.
type AfterRunEvent struct {
	Result *Result
	Err    error
}

// BeforeModelCallHook observes imminent model calls.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, e BeforeModelCallEvent)
}

// AfterModelCallHook observes completed model calls.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, e AfterModelCallEvent)
}

// BeforeToolCallHook observes imminent tool dispatches.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, e BeforeToolCallEvent)
}

// AfterToolCallHook observes completed tool dispatches.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, e AfterToolCallEvent)
}

// AfterRunHook observes run completion.
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, e AfterRunEvent)
}

// hookSet fans events out to registered hooks in registration order.
type hookSet struct {
	hooks []any
}

func (h *hookSet) fireBeforeModelCall(ctx context.Context, e BeforeModelCallEvent) {
	for _, hook := range h.hooks {
		if hk, ok := hook.(BeforeModelCallHook); ok {
			hk.OnBeforeModelCall(ctx, e)
		}
	}
}

func (h *hookSet) fireAfterModelCall(ctx context.Context, e AfterModelCallEvent) {
	for _, hook := range h.hooks {
		if hk, ok := hook.(AfterModelCallHook); ok {
			hk.OnAfterModelCall(ctx, e)
		}
	}
}

func (h *hookSet) fireBeforeToolCall(ctx context.Context, e BeforeToolCallEvent) {
	for _, hook := range h.hooks {
		if hk, ok := hook.(BeforeToolCallHook); ok {
			hk.OnBeforeToolCall(ctx, e)
		}
	}
}

func (h *hookSet) fireAfterToolCall(ctx context.Context, e AfterToolCallEvent) {
	for _, hook := range h.hooks {
		if hk, ok := hook.(AfterToolCallHook); ok {
			hk.OnAfterToolCall(ctx, e)
		}
	}
}

func (h *hookSet) fireAfterRun(ctx context.Context, e AfterRunEvent) {
	for _, hook := range h.hooks {
		if hk, ok := hook.(AfterRunHook); ok {
			hk.OnAfterRun(ctx, e)
		}
	}
}
