package builtins

import (
	"context"
	"sort"
	"strings"
)

// LodgingInput are the arguments accepted by the lodging adapter.
type LodgingInput struct {
	Neighborhood    string  `json:"neighborhood"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	MinPrice        float64 `json:"min_price,omitempty"`
	MaxPrice        float64 `json:"max_price,omitempty"`
	FamilyAmenities bool    `json:"family_amenities,omitempty"`
}

// LodgingOutput is the lodging adapter result payload.
type LodgingOutput struct {
	LodgingOptions []LodgingOption `json:"lodging_options"`
	Nights         int             `json:"nights"`
}

// LodgingTool searches the lodging dataset by neighborhood and price band.
type LodgingTool struct {
	fixtures *Fixtures
}

// NewLodgingTool creates a lodging adapter over the given fixtures.
func NewLodgingTool(fixtures *Fixtures) *LodgingTool {
	return &LodgingTool{fixtures: fixtures}
}

func (t *LodgingTool) Name() string { return "lodging" }

func (t *LodgingTool) Description() string {
	return "Searches for lodging options in a neighborhood for a date range, with optional price band and family filters."
}

func (t *LodgingTool) Tags() []string { return []string{"travel", "lodging"} }

// Invoke filters by neighborhood substring, price band, and family amenities,
// cheapest first. An empty neighborhood matches everything so a repair round
// can widen the search by dropping the filter.
func (t *LodgingTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input LodgingInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}

	start, err := parseDate("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", input.EndDate)
	if err != nil {
		return nil, err
	}

	nights := int(end.Sub(start).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	var results []LodgingOption
	for _, opt := range t.fixtures.Lodging {
		if input.Neighborhood != "" && !strings.Contains(strings.ToLower(opt.Neighborhood), strings.ToLower(input.Neighborhood)) {
			continue
		}
		if input.MinPrice > 0 && opt.PricePerNight < input.MinPrice {
			continue
		}
		if input.MaxPrice > 0 && opt.PricePerNight > input.MaxPrice {
			continue
		}
		if input.FamilyAmenities && !opt.FamilyAmenities {
			continue
		}
		results = append(results, opt)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].PricePerNight < results[j].PricePerNight })

	return encodeResult(LodgingOutput{LodgingOptions: results, Nights: nights})
}
