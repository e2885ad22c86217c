package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisorError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AdvisorError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewError(TOOL_NOT_FOUND, "tool flights not registered"),
			expected: "[TOOL_NOT_FOUND] tool flights not registered",
		},
		{
			name:     "with cause",
			err:      WrapError(TOOL_EXECUTION_ERROR, "flights failed", errors.New("connection refused")),
			expected: "[TOOL_EXECUTION_ERROR] flights failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAdvisorError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := WrapRetryableError(TOOL_TIMEOUT, "weather call timed out", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestAdvisorError_Is_MatchesByCode(t *testing.T) {
	a := NewError(DEADLINE_EXCEEDED, "overall deadline hit")
	b := WrapError(DEADLINE_EXCEEDED, "different message", errors.New("ctx"))

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, NewError(REPAIR_EXHAUSTED, "rounds spent"))
}

func TestIsRetryable(t *testing.T) {
	retryable := NewRetryableError(TOOL_TIMEOUT, "timed out")
	wrapped := fmt.Errorf("orchestrator: %w", retryable)

	assert.True(t, IsRetryable(retryable))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsRetryable(NewError(EXTRACTION_AMBIGUOUS, "ambiguous")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewError(SESSION_NOT_FOUND, "no session"))

	require.Equal(t, SESSION_NOT_FOUND, CodeOf(err))
	require.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
