package builtins

import (
	"context"
	"strings"
)

// EventsInput are the arguments accepted by the events adapter.
type EventsInput struct {
	Location    string   `json:"location"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	KidFriendly bool     `json:"kid_friendly,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	MaxPrice    float64  `json:"max_price,omitempty"`
}

// EventsOutput is the events adapter result payload.
type EventsOutput struct {
	Events []EventOption `json:"events"`
}

// EventsTool searches the events dataset by location and preference tags.
type EventsTool struct {
	fixtures *Fixtures
}

// NewEventsTool creates an events adapter over the given fixtures.
func NewEventsTool(fixtures *Fixtures) *EventsTool {
	return &EventsTool{fixtures: fixtures}
}

func (t *EventsTool) Name() string { return "events" }

func (t *EventsTool) Description() string {
	return "Searches for events and attractions in a location, with optional kid-friendly, tag, and price filters."
}

func (t *EventsTool) Tags() []string { return []string{"travel", "activity"} }

// Invoke filters by location substring, kid-friendliness, preference tags,
// and price ceiling. Tag matching is any-of so soft preferences widen rather
// than narrow the result set.
func (t *EventsTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input EventsInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if _, err := parseDate("start_date", input.StartDate); err != nil {
		return nil, err
	}
	if _, err := parseDate("end_date", input.EndDate); err != nil {
		return nil, err
	}

	var results []EventOption
	for _, e := range t.fixtures.Events {
		if input.Location != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(input.Location)) {
			continue
		}
		if input.KidFriendly && !e.KidFriendly {
			continue
		}
		if input.MaxPrice > 0 && e.Price > input.MaxPrice {
			continue
		}
		if len(input.Tags) > 0 && !hasAnyTag(e.Tags, input.Tags) {
			continue
		}
		results = append(results, e)
	}

	return encodeResult(EventsOutput{Events: results})
}

// hasAnyTag reports whether have contains at least one of want (case-insensitive).
func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
