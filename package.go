// Package reagent implements a tool-calling agent loop with typed
// structured-output extraction.
//
// The loop drives a ReAct-style cycle: the model proposes tool calls, the loop
// dispatches them against a read-only tool registry, and the results are fed
// back as tool-role observations until the model produces a final answer:
// either free text or a payload validated against a flat output schema.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    "github.com/ejhollis/reagent"
//	    "github.com/ejhollis/reagent/calc"
//	    "github.com/ejhollis/reagent/models"
//	)
//
//	func main() {
//	    model, err := models.NewOpenAIModel(os.Getenv("OPENAI_API_KEY"))
//	    if err != nil {
//	        fmt.Fprintln(os.Stderr, err)
//	        os.Exit(1)
//	    }
//
//	    registry := reagent.NewRegistry()
//	    registry.MustRegister(calc.Tool())
//
//	    cfg := reagent.NewConfig("gpt-4o-mini").
//	        WithSystemPrompt("You are a precise assistant.").
//	        WithMaxIterations(10).
//	        WithTools(registry)
//
//	    loop := reagent.NewLoop(model, cfg)
//	    result, err := loop.Run(context.Background(), "What is 144/12 + 7?")
//	    if err != nil {
//	        fmt.Fprintln(os.Stderr, err)
//	        os.Exit(1)
//	    }
//	    fmt.Println(result.Text)
//	}
//
// # Structured Output
//
// Configure a flat output descriptor to get a typed value instead of text:
//
//	desc := schema.NewDescriptor().
//	    Field("city", schema.TypeString, "City the forecast is for").
//	    Field("temperature", schema.TypeNumber, "Temperature in celsius").
//	    Field("conditions", schema.TypeStringList, "Weather conditions")
//
//	cfg := reagent.NewConfig("gpt-4o-mini").WithOutputSchema(desc)
//
//	result, err := loop.Run(ctx, "Weather in Tokyo?")
//	// result.Value["temperature"].(float64), etc.
//
// Validation failures surface as *schema.ValidationError naming the first
// offending field. The loop does not re-prompt the model on validation
// failure; wrap Run with your own retry if you want that behavior.
//
// # Error Taxonomy
//
// Errors recoverable inside a run (unknown tool names, tool handler failures)
// are turned into tool-role observations so the model can self-correct; they
// never fail the run. Errors that terminate the run are typed and inspectable
// with errors.As: [IterationBudgetError], schema.ValidationError,
// [ModelUnavailableError], [ModelRateLimitedError], and [CancelledError].
//
// # Concurrency
//
// A Config, Registry, and Loop are immutable once built and safe to share
// across concurrent Run calls. Each Run owns its transcript and iteration
// counter exclusively. Tool calls within one model turn are dispatched
// sequentially in the order the model emitted them; opt in to concurrent
// dispatch with [Config.WithParallelTools], which still reassembles observations in
// request order and reports sibling failures independently.
package reagent
