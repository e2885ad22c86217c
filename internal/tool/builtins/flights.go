package builtins

import (
	"context"
	"sort"
	"strings"
)

// FlightsInput are the arguments accepted by the flights adapter.
type FlightsInput struct {
	DepartureAirport string   `json:"departure_airport"`
	ArrivalAirports  []string `json:"arrival_airports"`
	DepartureDate    string   `json:"departure_date"`
	ReturnDate       string   `json:"return_date,omitempty"`
	MaxPrice         float64  `json:"max_price,omitempty"`
	MaxResults       int      `json:"max_results,omitempty"`
}

// FlightsOutput is the flights adapter result payload.
type FlightsOutput struct {
	Flights []FlightOption `json:"flights"`
}

// FlightsTool searches the flights dataset by departure and arrival airports.
type FlightsTool struct {
	fixtures *Fixtures
}

// NewFlightsTool creates a flights adapter over the given fixtures.
func NewFlightsTool(fixtures *Fixtures) *FlightsTool {
	return &FlightsTool{fixtures: fixtures}
}

func (t *FlightsTool) Name() string { return "flights" }

func (t *FlightsTool) Description() string {
	return "Searches for flights between a departure airport and one or more arrival airports on a date."
}

func (t *FlightsTool) Tags() []string { return []string{"travel", "transport"} }

// Invoke filters the dataset by arrival airport, optional departure airport,
// and optional price ceiling, cheapest first.
func (t *FlightsTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input FlightsInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if _, err := parseDate("departure_date", input.DepartureDate); err != nil {
		return nil, err
	}

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	arrivals := make(map[string]bool, len(input.ArrivalAirports))
	for _, a := range input.ArrivalAirports {
		arrivals[strings.ToUpper(a)] = true
	}

	var results []FlightOption
	for _, f := range t.fixtures.Flights {
		if len(arrivals) > 0 && !arrivals[strings.ToUpper(f.ArrivalAirport)] {
			continue
		}
		if input.DepartureAirport != "" && !strings.EqualFold(f.DepartureAirport, input.DepartureAirport) {
			continue
		}
		if input.MaxPrice > 0 && f.Price > input.MaxPrice {
			continue
		}
		results = append(results, f)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Price < results[j].Price })
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return encodeResult(FlightsOutput{Flights: results})
}
