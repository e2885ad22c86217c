package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// TransitInput are the arguments accepted by the transit adapter.
type TransitInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// TransitOutput is the transit adapter result payload.
type TransitOutput struct {
	Mode          string  `json:"mode"`
	TravelMinutes int     `json:"travel_minutes"`
	Fare          float64 `json:"fare"`
}

// TransitTool looks up transit options between two locations.
type TransitTool struct {
	fixtures *Fixtures
}

// NewTransitTool creates a transit adapter over the given fixtures.
func NewTransitTool(fixtures *Fixtures) *TransitTool {
	return &TransitTool{fixtures: fixtures}
}

func (t *TransitTool) Name() string { return "transit" }

func (t *TransitTool) Description() string {
	return "Provides transit mode, travel time, and fare between two locations."
}

func (t *TransitTool) Tags() []string { return []string{"travel", "transport"} }

// Invoke matches routes in either direction by substring.
func (t *TransitTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input TransitInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Origin == "" || input.Destination == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "origin and destination are required")
	}

	for _, route := range t.fixtures.Transit {
		if matchesRoute(route, input.Origin, input.Destination) {
			return encodeResult(TransitOutput{
				Mode:          route.Mode,
				TravelMinutes: route.TravelMinutes,
				Fare:          route.Fare,
			})
		}
	}

	return nil, types.NewError(types.TOOL_EXECUTION_ERROR,
		fmt.Sprintf("no transit route between %q and %q", input.Origin, input.Destination))
}

func matchesRoute(route TransitRoute, origin, destination string) bool {
	forward := containsFold(route.Origin, origin) && containsFold(route.Destination, destination)
	reverse := containsFold(route.Origin, destination) && containsFold(route.Destination, origin)
	return forward || reverse
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
