// Package models provides Model adapters over LangChainGo providers.
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/ejhollis/reagent"
)

// LangChainModel adapts an llms.Model to the reagent Model contract.
//
// It converts the transcript and tool declarations to LangChainGo types,
// classifies the provider's response into the FreeText / ToolCalls /
// Structured union, and normalizes token usage across providers.
type LangChainModel struct {
	llm llms.Model
}

// NewLangChainModel wraps the given llms.Model.
func NewLangChainModel(llm llms.Model) *LangChainModel {
	return &LangChainModel{llm: llm}
}

// Unwrap returns the underlying llms.Model.
func (m *LangChainModel) Unwrap() llms.Model {
	return m.llm
}

// Generate implements reagent.Model.
func (m *LangChainModel) Generate(
	ctx context.Context,
	req *reagent.ModelRequest,
) (*reagent.ModelResponse, error) {
	messages := convertTranscript(req.Transcript)

	var opts []llms.CallOption
	if req.ModelID != "" {
		opts = append(opts, llms.WithModel(req.ModelID))
	}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(req.Tools)))
	}
	if req.OutputSchema != nil {
		opts = append(opts, llms.WithJSONMode())
		messages = append(messages, schemaInstruction(req.OutputSchema.Raw()))
	}

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	duration := time.Since(start)
	if err != nil {
		return nil, classifyTransportError(req.ModelID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &reagent.ModelUnavailableError{
			ModelID: req.ModelID,
			Err:     fmt.Errorf("provider returned no choices"),
		}
	}

	choice := resp.Choices[0]
	out := &reagent.ModelResponse{
		Usage: extractUsage(choice.GenerationInfo, duration),
	}

	switch {
	case len(choice.ToolCalls) > 0:
		calls, err := convertToolCalls(choice.ToolCalls)
		if err != nil {
			return nil, &reagent.ModelUnavailableError{ModelID: req.ModelID, Err: err}
		}
		out.Kind = reagent.ResponseToolCalls
		out.ToolCalls = calls

	case req.OutputSchema != nil:
		out.Kind = reagent.ResponseStructured
		out.Payload = json.RawMessage(choice.Content)

	default:
		out.Kind = reagent.ResponseFreeText
		out.Text = choice.Content
	}
	return out, nil
}

// convertTranscript maps reagent messages onto LangChainGo message content.
func convertTranscript(transcript []reagent.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case reagent.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))

		case reagent.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))

		case reagent.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				parts := make([]llms.ContentPart, 0, len(msg.ToolCalls))
				for _, call := range msg.ToolCalls {
					args, _ := json.Marshal(call.Arguments)
					parts = append(parts, llms.ToolCall{
						ID:   call.ID,
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      call.Name,
							Arguments: string(args),
						},
					})
				}
				out = append(out, llms.MessageContent{
					Role:  llms.ChatMessageTypeAI,
					Parts: parts,
				})
				continue
			}
			out = append(out, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))

		case reagent.RoleTool:
			res := msg.ToolResult
			if res == nil {
				continue
			}
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: res.CallID,
						Name:       res.Name,
						Content:    res.Content,
					},
				},
			})
		}
	}
	return out
}

// convertTools maps tool declarations onto LangChainGo function definitions.
func convertTools(specs []reagent.ToolSpec) []llms.Tool {
	out := make([]llms.Tool, 0, len(specs))
	for _, spec := range specs {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return out
}

// convertToolCalls decodes provider tool calls into requests.
func convertToolCalls(calls []llms.ToolCall) ([]reagent.ToolCallRequest, error) {
	out := make([]reagent.ToolCallRequest, 0, len(calls))
	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(call.FunctionCall.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf(
					"decode arguments for tool %q: %w", call.FunctionCall.Name, err)
			}
		}
		out = append(out, reagent.ToolCallRequest{
			ID:        call.ID,
			Name:      call.FunctionCall.Name,
			Arguments: args,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("provider reported tool calls without function payloads")
	}
	return out, nil
}

// schemaInstruction renders the output descriptor as a trailing system
// message. Providers with native schema support ignore the redundancy;
// JSON-mode providers need the shape spelled out.
func schemaInstruction(raw map[string]any) llms.MessageContent {
	rendered, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		rendered = []byte("{}")
	}
	return llms.TextParts(llms.ChatMessageTypeSystem,
		"Respond with a single JSON object conforming to this JSON Schema. "+
			"Output only the JSON object, no prose.\n\n"+string(rendered))
}

// classifyTransportError maps provider failures onto the typed errors the
// loop surfaces. LangChainGo does not expose structured status codes across
// providers, so rate limiting is detected from the error text.
func classifyTransportError(modelID string, err error) error {
	text := strings.ToLower(err.Error())
	if strings.Contains(text, "rate limit") ||
		strings.Contains(text, "too many requests") ||
		strings.Contains(text, "429") {
		return &reagent.ModelRateLimitedError{ModelID: modelID, Err: err}
	}
	return &reagent.ModelUnavailableError{ModelID: modelID, Err: err}
}

// extractUsage normalizes token accounting across providers:
//   - OpenAI / Ollama: PromptTokens / CompletionTokens / TotalTokens
//   - Anthropic / Bedrock: input_tokens / output_tokens
func extractUsage(info map[string]any, duration time.Duration) *reagent.Usage {
	usage := &reagent.Usage{Duration: duration}
	if info == nil {
		return usage
	}
	usage.InputTokens = intFromInfo(info, "PromptTokens", "input_tokens")
	usage.OutputTokens = intFromInfo(info, "CompletionTokens", "output_tokens")
	usage.TotalTokens = intFromInfo(info, "TotalTokens", "total_tokens")
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return usage
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
