// Package tt provides shared test doubles and assertion helpers.
package tt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ejhollis/reagent"
)

// MockModel is a scripted reagent.Model. Responses are returned in the order
// they were queued; every request is captured for inspection.
type MockModel struct {
	mu        sync.Mutex
	responses []*reagent.ModelResponse
	errs      []error
	callCount int

	// Captured stores the request of every Generate call.
	Captured []*reagent.ModelRequest

	// OnGenerate, when set, runs at the start of every Generate call with
	// the 1-indexed call number. Useful to fire cancellation mid-run.
	OnGenerate func(call int)
}

// NewMockModel creates an empty MockModel. A call beyond the scripted
// responses fails the Generate with a descriptive error.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// AddText queues a free-text response with the given token usage.
func (m *MockModel) AddText(text string, inputTokens, outputTokens int) *MockModel {
	m.responses = append(m.responses, &reagent.ModelResponse{
		Kind: reagent.ResponseFreeText,
		Text: text,
		Usage: &reagent.Usage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	})
	m.errs = append(m.errs, nil)
	return m
}

// AddToolCalls queues a response requesting the given tool calls.
func (m *MockModel) AddToolCalls(calls ...reagent.ToolCallRequest) *MockModel {
	m.responses = append(m.responses, &reagent.ModelResponse{
		Kind:      reagent.ResponseToolCalls,
		ToolCalls: calls,
	})
	m.errs = append(m.errs, nil)
	return m
}

// AddStructured queues a structured response with the given JSON payload.
func (m *MockModel) AddStructured(payload string) *MockModel {
	m.responses = append(m.responses, &reagent.ModelResponse{
		Kind:    reagent.ResponseStructured,
		Payload: json.RawMessage(payload),
	})
	m.errs = append(m.errs, nil)
	return m
}

// AddError queues a failing call.
func (m *MockModel) AddError(err error) *MockModel {
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
	return m
}

// CallCount returns how many times Generate has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Generate implements reagent.Model.
func (m *MockModel) Generate(
	ctx context.Context,
	req *reagent.ModelRequest,
) (*reagent.ModelResponse, error) {
	m.mu.Lock()
	m.callCount++
	call := m.callCount
	m.Captured = append(m.Captured, req)
	m.mu.Unlock()

	if m.OnGenerate != nil {
		m.OnGenerate(call)
	}

	if call > len(m.responses) {
		return nil, fmt.Errorf("mock model: unscripted call %d", call)
	}
	if err := m.errs[call-1]; err != nil {
		return nil, err
	}
	return m.responses[call-1], nil
}

// Call builds a ToolCallRequest for scripting.
func Call(id, name string, args map[string]any) reagent.ToolCallRequest {
	return reagent.ToolCallRequest{ID: id, Name: name, Arguments: args}
}
