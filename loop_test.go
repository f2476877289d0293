package reagent_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejhollis/reagent"
	"github.com/ejhollis/reagent/internal/tt"
	"github.com/ejhollis/reagent/schema"
)

func weatherRegistry(t *testing.T, report string) *reagent.Registry {
	t.Helper()
	r := reagent.NewRegistry()
	r.MustRegister(reagent.NewTool(
		"get_weather",
		"Get the current weather for a city",
		schema.NewDescriptor().Field("city", schema.TypeString, "City name"),
		func(ctx context.Context, args map[string]any) (string, error) {
			return report, nil
		},
	))
	return r
}

func TestLoop_EndToEndWeather(t *testing.T) {
	const report = "Sunny, 22C"

	model := tt.NewMockModel().
		AddToolCalls(tt.Call("call-1", "get_weather", map[string]any{"city": "Tokyo"})).
		AddText("The weather in Tokyo is "+report+".", 120, 15)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("You are a weather assistant.").
		WithMaxIterations(5).
		WithTools(weatherRegistry(t, report))

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "weather in tokyo?")

	require.NoError(t, err)
	assert.Contains(t, result.Text, report)

	want := []reagent.Message{
		reagent.NewSystemMessage("You are a weather assistant."),
		reagent.NewUserMessage("weather in tokyo?"),
		reagent.NewToolCallMessage(tt.Call("call-1", "get_weather", map[string]any{"city": "Tokyo"})),
		reagent.NewToolResultMessage(reagent.ToolResult{
			CallID:  "call-1",
			Name:    "get_weather",
			Content: report,
		}),
		reagent.NewAssistantMessage("The weather in Tokyo is " + report + "."),
	}
	tt.AssertTranscript(t, want, result.Transcript)

	assert.Equal(t, 2, result.Stats.ModelCalls)
	assert.Equal(t, 1, result.Stats.ToolCalls)
	assert.Equal(t, 1, result.Stats.Iterations)
	assert.Equal(t, 120, result.Stats.InputTokens)
	assert.Equal(t, 15, result.Stats.OutputTokens)
	assert.Equal(t, map[string]int{"get_weather": 1}, result.Stats.ToolCallsByName)
}

func TestLoop_UnknownToolContinues(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls(tt.Call("call-1", "no_such_tool", nil)).
		AddText("recovered", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(weatherRegistry(t, "n/a"))

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, 2, model.CallCount())

	// The failed dispatch shows up as an error observation, not a run failure.
	obs := result.Transcript[3]
	require.NotNil(t, obs.ToolResult)
	assert.True(t, obs.ToolResult.IsError)
	assert.Contains(t, obs.Content, `unknown tool "no_such_tool"`)
	assert.Equal(t, 1, result.Stats.ToolErrors)
}

func TestLoop_HandlerErrorContinues(t *testing.T) {
	r := reagent.NewRegistry()
	r.MustRegister(reagent.NewTool(
		"flaky", "always fails", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("backend exploded")
		},
	))

	model := tt.NewMockModel().
		AddToolCalls(tt.Call("call-1", "flaky", nil)).
		AddText("noted the failure", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(r)

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "go")

	require.NoError(t, err)
	obs := result.Transcript[3]
	require.NotNil(t, obs.ToolResult)
	assert.True(t, obs.ToolResult.IsError)
	assert.Contains(t, obs.Content, "backend exploded")
}

func TestLoop_InvalidArgumentsContinues(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls(tt.Call("call-1", "get_weather", map[string]any{"city": 42})).
		AddText("done", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(weatherRegistry(t, "n/a"))

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "go")

	require.NoError(t, err)
	obs := result.Transcript[3]
	require.NotNil(t, obs.ToolResult)
	assert.True(t, obs.ToolResult.IsError)
	assert.Contains(t, obs.Content, "get_weather")
}

func TestLoop_IterationBudget(t *testing.T) {
	const maxIterations = 3

	model := tt.NewMockModel()
	for i := 0; i < maxIterations; i++ {
		model.AddToolCalls(tt.Call(fmt.Sprintf("call-%d", i), "get_weather",
			map[string]any{"city": "Tokyo"}))
	}

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(maxIterations).
		WithTools(weatherRegistry(t, "n/a"))

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "loop forever")

	require.Nil(t, result)
	var budget *reagent.IterationBudgetError
	require.ErrorAs(t, err, &budget)
	assert.Equal(t, maxIterations, budget.MaxIterations)

	// Exactly maxIterations dispatch rounds ran; the model is not called
	// again after the budget is spent.
	assert.Equal(t, maxIterations, model.CallCount())
}

func TestLoop_CancellationBeforeSecondModelCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := reagent.NewRegistry()
	r.MustRegister(reagent.NewTool(
		"trigger", "cancels the run", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			cancel()
			return "done", nil
		},
	))

	model := tt.NewMockModel().
		AddToolCalls(tt.Call("call-1", "trigger", nil)).
		AddText("never reached", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(r)

	result, err := reagent.NewLoop(model, cfg).Run(ctx, "go")

	require.Nil(t, result)
	var cancelled *reagent.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, "model_call", cancelled.Stage)
	assert.ErrorIs(t, err, context.Canceled)

	// No model call happened after the signal.
	assert.Equal(t, 1, model.CallCount())
}

func TestLoop_ModelErrorsPropagate(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target any
	}{
		{
			name:   "unavailable",
			err:    &reagent.ModelUnavailableError{ModelID: "m", Err: errors.New("boom")},
			target: new(*reagent.ModelUnavailableError),
		},
		{
			name:   "rate limited",
			err:    &reagent.ModelRateLimitedError{ModelID: "m", Err: errors.New("429")},
			target: new(*reagent.ModelRateLimitedError),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel().AddError(tc.err)
			cfg := reagent.NewConfig("m").WithSystemPrompt("sys")

			result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "hi")

			require.Nil(t, result)
			assert.ErrorAs(t, err, tc.target)
		})
	}
}

func TestLoop_StructuredOutput(t *testing.T) {
	desc := schema.NewDescriptor().
		Field("city", schema.TypeString, "City").
		Field("temperature", schema.TypeNumber, "Celsius").
		Field("conditions", schema.TypeStringList, "Conditions")

	model := tt.NewMockModel().
		AddStructured(`{"city":"Tokyo","temperature":22.5,"conditions":["sunny","dry"]}`)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithOutputSchema(desc)

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "weather?")

	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Equal(t, "Tokyo", result.Value["city"])
	assert.Equal(t, 22.5, result.Value["temperature"])
	assert.Equal(t, []string{"sunny", "dry"}, result.Value["conditions"])
}

func TestLoop_StructuredOutputFromFreeText(t *testing.T) {
	// Providers without a structured kind return the payload as plain text;
	// the loop still routes it through extraction when a schema is set.
	desc := schema.NewDescriptor().
		Field("answer", schema.TypeString, "The answer")

	model := tt.NewMockModel().AddText(`{"answer":"42"}`, 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithOutputSchema(desc)

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "meaning of life?")

	require.NoError(t, err)
	assert.Equal(t, "42", result.Value["answer"])
}

func TestLoop_SchemaValidationFailureIsFatal(t *testing.T) {
	desc := schema.NewDescriptor().
		Field("city", schema.TypeString, "City").
		Field("temperature", schema.TypeNumber, "Celsius")

	model := tt.NewMockModel().
		AddStructured(`{"city":"Tokyo"}`).
		AddText("never reached", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithOutputSchema(desc)

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "weather?")

	require.Nil(t, result)
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "temperature", verr.Field)

	// Fatal on first failure: no re-prompting.
	assert.Equal(t, 1, model.CallCount())
}

func TestLoop_ParallelDispatchKeepsRequestOrder(t *testing.T) {
	// The first-requested handler finishes last; the transcript must still
	// list observations in request order, and the failing sibling must not
	// abort the others.
	fastDone := make(chan struct{})

	r := reagent.NewRegistry()
	r.MustRegister(reagent.NewTool("slow", "waits for fast", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			<-fastDone
			return "slow-result", nil
		}))
	r.MustRegister(reagent.NewTool("fast", "finishes first", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			defer close(fastDone)
			return "fast-result", nil
		}))
	r.MustRegister(reagent.NewTool("broken", "fails", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("broken tool")
		}))

	model := tt.NewMockModel().
		AddToolCalls(
			tt.Call("c1", "slow", nil),
			tt.Call("c2", "fast", nil),
			tt.Call("c3", "broken", nil),
		).
		AddText("summary", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(r).
		WithParallelTools()

	result, err := reagent.NewLoop(model, cfg).Run(context.Background(), "go")

	require.NoError(t, err)
	// Transcript: system, user, assistant tool calls, 3 observations, answer.
	require.Len(t, result.Transcript, 7)

	names := []string{}
	for _, msg := range result.Transcript[3:6] {
		require.NotNil(t, msg.ToolResult)
		names = append(names, msg.ToolResult.Name)
	}
	assert.Equal(t, []string{"slow", "fast", "broken"}, names)
	assert.False(t, result.Transcript[3].ToolResult.IsError)
	assert.False(t, result.Transcript[4].ToolResult.IsError)
	assert.True(t, result.Transcript[5].ToolResult.IsError)
}

// hookRecorder captures hook firings in order.
type hookRecorder struct {
	mu     sync.Mutex
	events []string
}

func (h *hookRecorder) add(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *hookRecorder) OnBeforeModelCall(ctx context.Context, e reagent.BeforeModelCallEvent) {
	h.add(fmt.Sprintf("before_model:%d", e.Iteration))
}

func (h *hookRecorder) OnAfterModelCall(ctx context.Context, e reagent.AfterModelCallEvent) {
	h.add(fmt.Sprintf("after_model:%d", e.Iteration))
}

func (h *hookRecorder) OnBeforeToolCall(ctx context.Context, e reagent.BeforeToolCallEvent) {
	h.add("before_tool:" + e.Call.Name)
}

func (h *hookRecorder) OnAfterToolCall(ctx context.Context, e reagent.AfterToolCallEvent) {
	h.add("after_tool:" + e.Call.Name)
}

func (h *hookRecorder) OnAfterRun(ctx context.Context, e reagent.AfterRunEvent) {
	h.add("after_run")
}

func TestLoop_HooksFireInOrder(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls(tt.Call("c1", "get_weather", map[string]any{"city": "Oslo"})).
		AddText("cold", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithMaxIterations(5).
		WithTools(weatherRegistry(t, "-3C"))

	rec := &hookRecorder{}
	loop := reagent.NewLoop(model, cfg, reagent.WithHooks(rec))

	_, err := loop.Run(context.Background(), "weather in oslo?")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"before_model:1",
		"after_model:1",
		"before_tool:get_weather",
		"after_tool:get_weather",
		"before_model:2",
		"after_model:2",
		"after_run",
	}, rec.events)
}

func TestLoop_ToolDeclarationsSentToModel(t *testing.T) {
	model := tt.NewMockModel().AddText("hi", 0, 0)

	cfg := reagent.NewConfig("test-model").
		WithSystemPrompt("sys").
		WithTools(weatherRegistry(t, "n/a"))

	_, err := reagent.NewLoop(model, cfg).Run(context.Background(), "hello")

	require.NoError(t, err)
	require.Len(t, model.Captured, 1)
	req := model.Captured[0]
	assert.Equal(t, "test-model", req.ModelID)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "get_weather", req.Tools[0].Name)
	assert.NotNil(t, req.Tools[0].Parameters)
}
