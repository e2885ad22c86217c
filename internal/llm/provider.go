package llm

import (
	"context"
)

// Provider defines the interface that all LLM providers must implement.
// It provides a unified abstraction over different LLM backends
// (OpenAI, Anthropic, local Ollama models, test mocks).
//
// Providers are non-deterministic external services: callers must treat
// completions as tool invocations with their own timeout and retry policy,
// never as a source of ground truth for numeric validation.
type Provider interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "ollama", "mock")
	Name() string

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
