// Package builtins contains the fixture-backed tool adapters: flights,
// lodging, events, weather, transit, currency rates, and geocoding.
package builtins

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

const dateLayout = "2006-01-02"

// decodeArgs decodes loosely-typed tool arguments into a typed input struct.
// Decoding is weakly typed so LLM-produced values like "5" for an int field
// still land correctly.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return types.WrapError(types.TOOL_INVALID_INPUT, "failed to build argument decoder", err)
	}
	if err := decoder.Decode(args); err != nil {
		return types.WrapError(types.TOOL_INVALID_INPUT, "failed to decode tool arguments", err)
	}
	return nil
}

// parseDate parses a YYYY-MM-DD argument value.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, types.NewError(types.TOOL_INVALID_INPUT, fmt.Sprintf("%s is required", field))
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, types.WrapError(types.TOOL_INVALID_INPUT,
			fmt.Sprintf("%s must be a YYYY-MM-DD date", field), err)
	}
	return t, nil
}
