package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Client wraps a Provider with per-call timeout and transport-level retry.
// Retries apply only to transient failures (timeouts, rate limits, transport
// errors); a completion that parses but says something different on a second
// attempt is never retried for divergence.
type Client struct {
	provider   Provider
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout. Default is 30 seconds.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets the number of retries after a transient failure.
// Default is 2.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithLogger sets the structured logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client around the given provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	client := &Client{
		provider:   provider,
		timeout:    30 * time.Second,
		maxRetries: 2,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Complete sends a completion request, applying the client timeout and
// retrying transient failures with exponential backoff.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, types.WrapError(types.LLM_REQUEST_FAILED, "invalid completion request", err)
	}

	var resp *CompletionResponse

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		r, err := c.provider.Complete(callCtx, req)
		if err != nil {
			translated := TranslateError(c.provider.Name(), err)
			if types.IsRetryable(translated) && ctx.Err() == nil {
				c.logger.WarnContext(ctx, "LLM call failed, will retry",
					"provider", c.provider.Name(),
					"error", translated,
					"elapsed", time.Since(start),
				)
				return translated
			}
			return backoff.Permanent(translated)
		}

		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return resp, nil
}

// CompleteJSON sends a completion request and decodes the JSON document in
// the response into v. Parse failures are not retried; the caller decides
// whether to re-prompt.
func (c *Client) CompleteJSON(ctx context.Context, req CompletionRequest, v any) error {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}

	if err := DecodeJSON(resp.Content, v); err != nil {
		return NewInvalidResponseError(c.provider.Name(), err)
	}
	return nil
}
