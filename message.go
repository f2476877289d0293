package reagent

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a run's conversation transcript.
//
// The transcript is append-only for the duration of one Run call: messages
// are never mutated or reordered after being appended. Assistant messages may
// carry ToolCalls when the model requested tool invocations; tool-role
// messages carry the matching ToolResult.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tool invocations,
	// in the order the model emitted them.
	ToolCalls []ToolCallRequest

	// ToolResult is set on tool-role messages.
	ToolResult *ToolResult
}

// ToolCallRequest is a tool invocation requested by the model.
type ToolCallRequest struct {
	// ID is the provider-assigned call identifier, echoed back in the
	// matching ToolResult so providers can correlate them. May be empty for
	// providers that do not assign IDs.
	ID string

	// Name must reference a tool present in the registry. Unresolved names
	// are recoverable: the loop reports them to the model as tool-error
	// observations.
	Name string

	// Arguments maps parameter names to values as decoded from the model's
	// call payload.
	Arguments map[string]any
}

// ToolResult is the outcome of dispatching a single ToolCallRequest.
type ToolResult struct {
	CallID string
	Name   string

	// Content is the handler's output, or the error text when IsError is set.
	Content string

	// IsError marks results that carry an error observation (unknown tool,
	// argument validation failure, or handler failure).
	IsError bool
}

// NewSystemMessage builds a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant-role message with text content.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolCallMessage builds an assistant-role message carrying the model's
// tool call requests.
func NewToolCallMessage(calls ...ToolCallRequest) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolResultMessage builds a tool-role message carrying one result.
func NewToolResultMessage(result ToolResult) Message {
	return Message{Role: RoleTool, Content: result.Content, ToolResult: &result}
}
