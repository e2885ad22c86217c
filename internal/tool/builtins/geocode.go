package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// GeocodeInput are the arguments accepted by the geocoding adapter.
type GeocodeInput struct {
	Query string `json:"query"`
}

// GeocodeOutput is the geocoding adapter result payload.
type GeocodeOutput struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// GeocodeTool converts a place query into coordinates. Weather lookups
// depend on it, which makes it the canonical example of an in-day tool
// dependency for the orchestrator.
type GeocodeTool struct {
	fixtures *Fixtures
}

// NewGeocodeTool creates a geocoding adapter over the given fixtures.
func NewGeocodeTool(fixtures *Fixtures) *GeocodeTool {
	return &GeocodeTool{fixtures: fixtures}
}

func (t *GeocodeTool) Name() string { return "geocoding" }

func (t *GeocodeTool) Description() string {
	return "Converts a location query like a city name into latitude/longitude coordinates."
}

func (t *GeocodeTool) Tags() []string { return []string{"travel", "location"} }

// Invoke matches the query against known places by substring.
func (t *GeocodeTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input GeocodeInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Query == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "query is required")
	}

	query := strings.ToLower(input.Query)
	for _, entry := range t.fixtures.Geocode {
		if strings.Contains(strings.ToLower(entry.Query), query) || strings.Contains(query, strings.ToLower(entry.Query)) {
			return encodeResult(GeocodeOutput{
				Latitude:    entry.Latitude,
				Longitude:   entry.Longitude,
				DisplayName: entry.DisplayName,
			})
		}
	}

	return nil, types.NewError(types.TOOL_EXECUTION_ERROR,
		fmt.Sprintf("geocoding found no results for %q", input.Query))
}
