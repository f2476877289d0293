package models

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAIModel creates a Model backed by the OpenAI chat completions API.
//
// The token is typically taken from the OPENAI_API_KEY environment variable
// by the caller; an empty token is rejected here with a readable error so
// runners can fail fast at startup instead of on the first model call.
//
// Additional openai.Option values can be passed to customise the underlying
// client (e.g. openai.WithBaseURL for OpenAI-compatible endpoints).
func NewOpenAIModel(token string, opts ...openai.Option) (*LangChainModel, error) {
	if token == "" {
		return nil, fmt.Errorf(
			"OpenAI API key is required: set the OPENAI_API_KEY environment variable " +
				"(create a key at https://platform.openai.com/api-keys)")
	}

	baseOpts := []openai.Option{
		openai.WithToken(token),
	}
	// Caller options come after so they can override defaults.
	allOpts := append(baseOpts, opts...)

	llm, err := openai.New(allOpts...)
	if err != nil {
		return nil, fmt.Errorf("create OpenAI client: %w", err)
	}
	return NewLangChainModel(llm), nil
}
