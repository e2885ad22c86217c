package tool

import "github.com/muneeb-ds/ai-travel-advisor/internal/types"

// Tool error codes
const (
	ErrToolNotFound      types.ErrorCode = types.TOOL_NOT_FOUND
	ErrToolAlreadyExists types.ErrorCode = types.TOOL_ALREADY_EXISTS
	ErrToolInvalidInput  types.ErrorCode = types.TOOL_INVALID_INPUT
	ErrToolExecution     types.ErrorCode = types.TOOL_EXECUTION_ERROR
	ErrToolTimeout       types.ErrorCode = types.TOOL_TIMEOUT
)
