package builtins

import (
	"encoding/json"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// encodeResult converts a typed output struct into the loosely-typed result
// map the Tool contract returns, going through JSON so field names match the
// struct's json tags.
func encodeResult(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, "failed to encode tool result", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, "failed to decode tool result", err)
	}
	return out, nil
}
