package reagent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ejhollis/reagent/schema"
)

// runState is the loop's position in the reason/act/observe cycle.
type runState int

const (
	stateAwaitingModel runState = iota
	stateDispatchingTools
	stateExtractingOutput
	stateDone
)

// Result is the terminal value of a successful run.
//
// Exactly one of Text or Value is set: Text for free-text answers, Value for
// schema-validated structured answers.
type Result struct {
	// Text is the model's free-text answer.
	Text string

	// Value is the extracted structured answer, keyed by descriptor field
	// name with normalized value types (string, float64, bool, []string).
	Value map[string]any

	// Transcript is the full conversation of the run, in append order.
	Transcript []Message

	// Stats is the run's accounting.
	Stats RunStats
}

// Loop drives the ReAct cycle: repeated model invocations, tool dispatch
// against the registry, and a final answer: free text or a typed value
// extracted against the configured output schema.
//
// A Loop is immutable after NewLoop and safe for concurrent Run calls; each
// run owns its transcript, iteration counter, and stats exclusively.
type Loop struct {
	model  Model
	config *Config
	hooks  hookSet
}

// LoopOption configures a Loop at construction.
type LoopOption func(*Loop)

// WithHooks registers observer hooks. Each value may implement any subset of
// the hook interfaces; events fire in registration order.
func WithHooks(hooks ...any) LoopOption {
	return func(l *Loop) {
		l.hooks.hooks = append(l.hooks.hooks, hooks...)
	}
}

// NewLoop creates a Loop from a model capability and a config.
// Panics if model or config is nil; both are wiring-time requirements.
func NewLoop(model Model, config *Config, opts ...LoopOption) *Loop {
	if model == nil {
		panic("reagent: model must not be nil")
	}
	if config == nil {
		panic("reagent: config must not be nil")
	}
	l := &Loop{model: model, config: config}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives one conversational task to completion.
//
// The transcript is seeded with the system prompt and the user input, then
// the loop alternates model calls and tool dispatch until the model produces
// a final answer or the iteration budget runs out. Tool-level failures
// (unknown names, invalid arguments, handler errors) become tool-role error
// observations and never fail the run; model transport errors, schema
// validation failures, the iteration budget, and cancellation do.
//
// Cancellation of ctx is observed before each model call and before tool
// dispatch, and surfaces as *CancelledError. On any error the returned
// Result is nil; callers always get either a definite answer or a typed
// error, never both.
func (l *Loop) Run(ctx context.Context, input string) (*Result, error) {
	r := &run{
		loop:  l,
		cfg:   l.config,
		stats: newRunStats(),
		start: time.Now(),
	}

	if sys := l.config.SystemPrompt(); sys != "" {
		r.append(NewSystemMessage(sys))
	}
	r.append(NewUserMessage(input))

	result, err := r.drive(ctx)
	l.hooks.fireAfterRun(ctx, AfterRunEvent{Result: result, Err: err})
	return result, err
}

// run is the per-Run mutable state. It is confined to a single Run call and
// never shared.
type run struct {
	loop  *Loop
	cfg   *Config
	stats RunStats
	start time.Time

	transcript []Message
	iterations int

	// pending holds the tool calls of the current model turn while in
	// stateDispatchingTools.
	pending []ToolCallRequest

	// payload holds the candidate structured answer while in
	// stateExtractingOutput.
	payload json.RawMessage
}

func (r *run) append(msg Message) {
	r.transcript = append(r.transcript, msg)
}

// drive executes the state machine until a terminal state.
func (r *run) drive(ctx context.Context) (*Result, error) {
	state := stateAwaitingModel
	for {
		var err error
		switch state {
		case stateAwaitingModel:
			state, err = r.awaitModel(ctx)
			if err != nil {
				return nil, err
			}
			if state == stateDone {
				return r.done(r.lastAssistantText(), nil), nil
			}

		case stateDispatchingTools:
			if err := r.dispatchRound(ctx); err != nil {
				return nil, err
			}
			r.iterations++
			r.stats.Iterations = r.iterations
			if r.iterations >= r.cfg.MaxIterations() {
				return nil, &IterationBudgetError{MaxIterations: r.cfg.MaxIterations()}
			}
			state = stateAwaitingModel

		case stateExtractingOutput:
			value, err := schema.Extract(r.payload, r.cfg.OutputSchema())
			if err != nil {
				return nil, err
			}
			return r.done("", value), nil
		}
	}
}

// awaitModel performs one model call and classifies the response. The
// returned state is stateDispatchingTools, stateExtractingOutput, or
// stateDone for a free-text terminal answer.
func (r *run) awaitModel(ctx context.Context) (runState, error) {
	if err := ctx.Err(); err != nil {
		return 0, &CancelledError{Stage: "model_call", Err: err}
	}

	req := &ModelRequest{
		ModelID:      r.cfg.ModelID(),
		Transcript:   append([]Message(nil), r.transcript...),
		Tools:        r.toolSpecs(),
		OutputSchema: r.cfg.OutputSchema(),
	}
	r.loop.hooks.fireBeforeModelCall(ctx, BeforeModelCallEvent{
		Iteration: r.stats.ModelCalls + 1,
		Request:   req,
	})

	mctx := ctx
	if d := r.cfg.modelTimeout; d > 0 {
		var cancel context.CancelFunc
		mctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	resp, err := r.loop.model.Generate(mctx, req)
	if resp != nil {
		r.stats.recordModelCall(resp.Usage)
	} else {
		r.stats.recordModelCall(nil)
	}
	r.loop.hooks.fireAfterModelCall(ctx, AfterModelCallEvent{
		Iteration: r.stats.ModelCalls,
		Request:   req,
		Response:  resp,
		Err:       err,
	})
	if err != nil {
		return 0, err
	}

	switch resp.Kind {
	case ResponseToolCalls:
		r.append(NewToolCallMessage(resp.ToolCalls...))
		r.pending = resp.ToolCalls
		return stateDispatchingTools, nil

	case ResponseStructured:
		r.append(NewAssistantMessage(string(resp.Payload)))
		if r.cfg.OutputSchema() == nil {
			// No schema was asked for; treat the payload as the final text.
			return stateDone, nil
		}
		r.payload = resp.Payload
		return stateExtractingOutput, nil

	default: // ResponseFreeText
		r.append(NewAssistantMessage(resp.Text))
		if r.cfg.OutputSchema() != nil {
			// Some providers return the schema payload as plain text.
			r.payload = json.RawMessage(resp.Text)
			return stateExtractingOutput, nil
		}
		return stateDone, nil
	}
}

// dispatchRound executes the pending tool calls of one model turn and
// appends their observations in request order.
func (r *run) dispatchRound(ctx context.Context) error {
	calls := r.pending
	r.pending = nil

	var results []ToolResult
	var err error
	if r.cfg.parallelTools && len(calls) > 1 {
		results, err = r.dispatchParallel(ctx, calls)
	} else {
		results, err = r.dispatchSequential(ctx, calls)
	}
	if err != nil {
		return err
	}

	for i, res := range results {
		r.stats.recordToolCall(calls[i].Name, res.IsError)
		r.append(NewToolResultMessage(res))
	}
	return nil
}

// dispatchSequential invokes handlers one at a time, in the order the model
// emitted the calls. Cancellation is observed before each dispatch.
func (r *run) dispatchSequential(ctx context.Context, calls []ToolCallRequest) ([]ToolResult, error) {
	iteration := r.iterations + 1
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Stage: "tool_dispatch", Err: err}
		}
		r.loop.hooks.fireBeforeToolCall(ctx, BeforeToolCallEvent{Iteration: iteration, Call: call})
		res, callErr := r.executeCall(ctx, call)
		r.loop.hooks.fireAfterToolCall(ctx, AfterToolCallEvent{
			Iteration: iteration,
			Call:      call,
			Result:    res,
			Err:       callErr,
		})
		results = append(results, res)
	}
	return results, nil
}

// dispatchParallel invokes all handlers of one turn concurrently. Results
// are collected before the loop resumes, reassembled in request order, and a
// failing call never aborts its siblings; each failure is captured as its
// own error observation.
func (r *run) dispatchParallel(ctx context.Context, calls []ToolCallRequest) ([]ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Stage: "tool_dispatch", Err: err}
	}

	iteration := r.iterations + 1
	for _, call := range calls {
		r.loop.hooks.fireBeforeToolCall(ctx, BeforeToolCallEvent{Iteration: iteration, Call: call})
	}

	results := make([]ToolResult, len(calls))
	errs := make([]error, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCallRequest) {
			defer wg.Done()
			results[i], errs[i] = r.executeCall(ctx, call)
		}(i, call)
	}
	wg.Wait()

	for i, call := range calls {
		r.loop.hooks.fireAfterToolCall(ctx, AfterToolCallEvent{
			Iteration: iteration,
			Call:      call,
			Result:    results[i],
			Err:       errs[i],
		})
	}
	return results, nil
}

// executeCall resolves and invokes a single tool call. Every failure mode
// (unknown name, invalid arguments, handler error) becomes an error
// observation so the model can self-correct; the returned error mirrors the
// observation for hooks and is never fatal.
func (r *run) executeCall(ctx context.Context, call ToolCallRequest) (ToolResult, error) {
	def, err := r.cfg.Tools().Resolve(call.Name)
	if err != nil {
		return errorResult(call, err), err
	}

	if v := r.cfg.Tools().validator(call.Name); v != nil {
		if err := v.Validate(call.Arguments); err != nil {
			err = &ToolExecutionError{Tool: call.Name, Err: err}
			return errorResult(call, err), err
		}
	}

	tctx := ctx
	if d := r.cfg.toolTimeout; d > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	out, err := def.Call(tctx, call.Arguments)
	if err != nil {
		return errorResult(call, err), err
	}

	return ToolResult{CallID: call.ID, Name: call.Name, Content: out}, nil
}

func errorResult(call ToolCallRequest, err error) ToolResult {
	return ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: err.Error(),
		IsError: true,
	}
}

func (r *run) toolSpecs() []ToolSpec {
	defs := r.cfg.Tools().List()
	if len(defs) == 0 {
		return nil
	}
	specs := make([]ToolSpec, 0, len(defs))
	for _, def := range defs {
		specs = append(specs, ToolSpec{
			Name:        def.Name(),
			Description: def.Description(),
			Parameters:  def.ParameterSchema(),
		})
	}
	return specs
}

func (r *run) lastAssistantText() string {
	for i := len(r.transcript) - 1; i >= 0; i-- {
		if r.transcript[i].Role == RoleAssistant {
			return r.transcript[i].Content
		}
	}
	return ""
}

func (r *run) done(text string, value map[string]any) *Result {
	r.stats.Duration = time.Since(r.start)
	return &Result{
		Text:       text,
		Value:      value,
		Transcript: r.transcript,
		Stats:      r.stats,
	}
}
