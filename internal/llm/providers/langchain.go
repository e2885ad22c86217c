// Package providers contains Provider implementations backed by langchaingo
// plus a scriptable mock for tests.
package providers

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
)

// langchainProvider adapts a langchaingo model to the llm.Provider interface.
// All hosted backends (OpenAI, Anthropic, Ollama) share this adapter; only
// construction differs, handled by the factory.
type langchainProvider struct {
	name  string
	model llms.Model
}

// Name returns the provider name.
func (p *langchainProvider) Name() string {
	return p.name
}

// Complete sends a completion request through langchaingo.
func (p *langchainProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.model.GenerateContent(ctx, toMessageContent(req), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError(p.name, err)
	}
	return fromContentResponse(resp, req.Model), nil
}

// toMessageContent converts advisor messages to langchaingo MessageContent.
// A non-empty SystemPrompt is prepended as a system message.
func toMessageContent(req llm.CompletionRequest) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		result = append(result, llms.MessageContent{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.SystemPrompt)},
		})
	}

	for _, msg := range req.Messages {
		var role schema.ChatMessageType
		switch msg.Role {
		case llm.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}

		result = append(result, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	return result
}

// buildCallOptions maps request parameters to langchaingo call options.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	var opts []llms.CallOption
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	return opts
}

// fromContentResponse converts a langchaingo response to an advisor response.
func fromContentResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	result := &llm.CompletionResponse{Model: model}
	if resp == nil || len(resp.Choices) == 0 {
		return result
	}

	choice := resp.Choices[0]
	result.Content = choice.Content
	result.FinishReason = choice.StopReason

	if in, ok := choice.GenerationInfo["PromptTokens"].(int); ok {
		result.Usage.InputTokens = in
	}
	if out, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
		result.Usage.OutputTokens = out
	}

	return result
}
