package providers

import (
	"context"
	"sync"

	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// MockProvider implements llm.Provider for tests. Responses are returned in
// the order they were scripted; calls are recorded for inspection.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	index     int
	calls     []llm.CompletionRequest
}

type mockResponse struct {
	content string
	err     error
}

// NewMockProvider creates a mock provider with no scripted responses.
// An unscripted call returns an error.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns "mock".
func (p *MockProvider) Name() string {
	return "mock"
}

// Respond scripts a successful completion.
func (p *MockProvider) Respond(content string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, mockResponse{content: content})
	return p
}

// Fail scripts a failing completion.
func (p *MockProvider) Fail(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, mockResponse{err: err})
	return p
}

// Calls returns all requests seen so far.
func (p *MockProvider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

// Complete returns the next scripted response. The final scripted response is
// repeated once the script is exhausted, so idempotent refinement tests can
// replay the same completion.
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)

	if len(p.responses) == 0 {
		return nil, types.NewError(types.LLM_REQUEST_FAILED, "mock provider has no scripted responses")
	}

	idx := p.index
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	} else {
		p.index++
	}

	scripted := p.responses[idx]
	if scripted.err != nil {
		return nil, scripted.err
	}

	return &llm.CompletionResponse{
		Content:      scripted.content,
		Model:        "mock-model",
		FinishReason: "stop",
	}, nil
}
