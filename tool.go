package reagent

import (
	"context"

	"github.com/ejhollis/reagent/schema"
)

// Handler executes a tool call. Arguments arrive as decoded from the model's
// call payload, already validated against the tool's parameter descriptor.
// The returned string is appended to the transcript as the observation.
//
// Handlers may perform arbitrary I/O. They must honor ctx for cancellation
// and are responsible for their own cleanup; the loop abandons a handler's
// result when the run is cancelled. A handler error never fails the run; it
// is reported back to the model as a tool-error observation.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition is a named, described capability exposed to the model.
//
// Definitions carry everything explicitly (name, description, parameter
// descriptor, handler) and are registered programmatically. There is no
// reflection-based discovery.
type ToolDefinition struct {
	name        string
	description string
	params      *schema.Descriptor
	handler     Handler
}

// NewTool creates a ToolDefinition. The parameter descriptor may be nil for
// tools that take no arguments.
//
// Example:
//
//	getWeather := reagent.NewTool(
//	    "get_weather",
//	    "Get the current weather for a city",
//	    schema.NewDescriptor().
//	        Field("city", schema.TypeString, "City name, e.g. \"Tokyo\""),
//	    func(ctx context.Context, args map[string]any) (string, error) {
//	        return weatherFor(args["city"].(string))
//	    },
//	)
func NewTool(
	name, description string,
	params *schema.Descriptor,
	handler Handler,
) *ToolDefinition {
	return &ToolDefinition{
		name:        name,
		description: description,
		params:      params,
		handler:     handler,
	}
}

// Name returns the tool's identifier used in tool calls.
func (d *ToolDefinition) Name() string {
	return d.name
}

// Description returns the human-readable description shown to the model.
func (d *ToolDefinition) Description() string {
	return d.description
}

// Parameters returns the tool's parameter descriptor, or nil if the tool
// takes no arguments.
func (d *ToolDefinition) Parameters() *schema.Descriptor {
	return d.params
}

// ParameterSchema renders the parameter descriptor as a JSON Schema map for
// the model's tool declarations. Returns nil for tools without parameters.
func (d *ToolDefinition) ParameterSchema() map[string]any {
	return d.params.Raw()
}

// Call invokes the tool's handler.
func (d *ToolDefinition) Call(ctx context.Context, args map[string]any) (string, error) {
	out, err := d.handler(ctx, args)
	if err != nil {
		return "", &ToolExecutionError{Tool: d.name, Err: err}
	}
	return out, nil
}
