package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// NewAuthError creates an error for missing or rejected provider credentials.
func NewAuthError(provider string, cause error) *types.AdvisorError {
	return types.WrapError(types.LLM_AUTH_FAILED,
		fmt.Sprintf("provider %s authentication failed", provider), cause)
}

// NewInvalidResponseError creates an error for completions the caller could
// not parse into the expected structure.
func NewInvalidResponseError(provider string, cause error) *types.AdvisorError {
	return types.WrapError(types.LLM_RESPONSE_INVALID,
		fmt.Sprintf("provider %s returned an unparseable response", provider), cause)
}

// TranslateError converts provider transport errors into structured advisor
// errors, marking transient failures retryable so the client retry policy can
// distinguish them from hard failures.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var advErr *types.AdvisorError
	if errors.As(err, &advErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.WrapRetryableError(types.LLM_REQUEST_FAILED,
			fmt.Sprintf("provider %s request timed out", provider), err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return types.WrapRetryableError(types.LLM_RATE_LIMITED,
			fmt.Sprintf("provider %s rate limited the request", provider), err)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "api key"):
		return NewAuthError(provider, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return types.WrapRetryableError(types.LLM_REQUEST_FAILED,
			fmt.Sprintf("provider %s transport failure", provider), err)
	default:
		return types.WrapError(types.LLM_REQUEST_FAILED,
			fmt.Sprintf("provider %s request failed", provider), err)
	}
}
