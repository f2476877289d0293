package reagent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ejhollis/reagent/schema"
)

// Model is the chat-completion capability consumed by the loop. It is an
// opaque collaborator: the loop hands it the transcript plus declarations and
// receives back one of three response kinds. Inference internals, retries,
// and transport are the adapter's business (see the models package).
type Model interface {
	// Generate produces the model's next turn for the given request.
	//
	// Transport failures should surface as *ModelUnavailableError or
	// *ModelRateLimitedError; the loop passes them to the caller unchanged
	// and never retries.
	Generate(ctx context.Context, req *ModelRequest) (*ModelResponse, error)
}

// ModelRequest carries everything the model needs for one turn.
type ModelRequest struct {
	// ModelID selects the model variant, e.g. "gpt-4o-mini".
	ModelID string

	// Transcript is the ordered conversation so far, starting with the
	// system prompt and user input.
	Transcript []Message

	// Tools declares the callable tools in registry order. Empty when no
	// tools are configured.
	Tools []ToolSpec

	// OutputSchema, when non-nil, asks the model for a payload conforming
	// to the descriptor instead of free text.
	OutputSchema *schema.Descriptor
}

// ToolSpec is one entry of the available-tool declarations sent to the model.
type ToolSpec struct {
	Name        string
	Description string

	// Parameters is the JSON Schema for the tool's arguments, as rendered
	// by schema.Descriptor.Raw. Nil for tools without parameters.
	Parameters map[string]any
}

// ResponseKind tags the variant carried by a ModelResponse.
type ResponseKind int

const (
	// ResponseFreeText: the model answered with plain text.
	ResponseFreeText ResponseKind = iota

	// ResponseToolCalls: the model requested one or more tool invocations.
	ResponseToolCalls

	// ResponseStructured: the model produced a payload for the requested
	// output schema.
	ResponseStructured
)

// ModelResponse is the tagged union returned by Generate. Exactly one of
// Text, ToolCalls, or Payload is meaningful, selected by Kind.
type ModelResponse struct {
	Kind ResponseKind

	// Text is set for ResponseFreeText.
	Text string

	// ToolCalls is set for ResponseToolCalls, in the order the model
	// emitted them.
	ToolCalls []ToolCallRequest

	// Payload is set for ResponseStructured. It is the raw payload prior to
	// extraction; validation happens in the loop.
	Payload json.RawMessage

	// Usage carries normalized token accounting, when the provider reports
	// it. May be nil.
	Usage *Usage
}

// Usage is provider-normalized token accounting for one model call.
// Adapters map each provider's reporting keys onto these fields.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Duration     time.Duration
}
