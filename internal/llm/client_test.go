package llm

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// fakeProvider returns scripted results and counts calls.
type fakeProvider struct {
	calls   atomic.Int32
	results []func() (*CompletionResponse, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.results) {
		n = len(f.results) - 1
	}
	return f.results[n]()
}

func okResponse(content string) func() (*CompletionResponse, error) {
	return func() (*CompletionResponse, error) {
		return &CompletionResponse{Content: content}, nil
	}
}

func failWith(err error) func() (*CompletionResponse, error) {
	return func() (*CompletionResponse, error) { return nil, err }
}

func testRequest() CompletionRequest {
	return CompletionRequest{Messages: []Message{NewUserMessage("plan a trip")}}
}

func TestClient_Complete_Success(t *testing.T) {
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){okResponse("ok")}}
	client := NewClient(provider)

	resp, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestClient_Complete_RetriesTransientFailure(t *testing.T) {
	transient := types.NewRetryableError(types.LLM_REQUEST_FAILED, "connection reset")
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){
		failWith(transient),
		failWith(transient),
		okResponse("recovered"),
	}}
	client := NewClient(provider, WithMaxRetries(2))

	resp, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(3), provider.calls.Load())
}

func TestClient_Complete_NoRetryOnPermanentFailure(t *testing.T) {
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){
		failWith(types.NewError(types.LLM_AUTH_FAILED, "bad key")),
		okResponse("should not be reached"),
	}}
	client := NewClient(provider, WithMaxRetries(3))

	_, err := client.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, types.LLM_AUTH_FAILED, types.CodeOf(err))
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestClient_Complete_RetryBudgetExhausted(t *testing.T) {
	transient := types.NewRetryableError(types.LLM_REQUEST_FAILED, "timeout")
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){failWith(transient)}}
	client := NewClient(provider, WithMaxRetries(1))

	_, err := client.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestClient_Complete_InvalidRequest(t *testing.T) {
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){okResponse("unused")}}
	client := NewClient(provider)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestClient_CompleteJSON(t *testing.T) {
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){
		okResponse("```json\n{\"days\": 5}\n```"),
	}}
	client := NewClient(provider, WithTimeout(5*time.Second))

	var out struct {
		Days int `json:"days"`
	}
	require.NoError(t, client.CompleteJSON(context.Background(), testRequest(), &out))
	assert.Equal(t, 5, out.Days)
}

func TestClient_CompleteJSON_UnparseableNotRetried(t *testing.T) {
	provider := &fakeProvider{results: []func() (*CompletionResponse, error){
		okResponse("no json here"),
		okResponse("{\"days\": 5}"),
	}}
	client := NewClient(provider, WithMaxRetries(3))

	var out map[string]any
	err := client.CompleteJSON(context.Background(), testRequest(), &out)
	require.Error(t, err)
	assert.Equal(t, types.LLM_RESPONSE_INVALID, types.CodeOf(err))
	assert.Equal(t, int32(1), provider.calls.Load())
}
