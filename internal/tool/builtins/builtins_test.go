package builtins

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// decodeInto round-trips a tool result map into a typed output for assertions.
func decodeInto(t *testing.T, result map[string]any, out any) {
	t.Helper()
	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestFlightsTool_FiltersAndSorts(t *testing.T) {
	flights := NewFlightsTool(DefaultFixtures())

	result, err := flights.Invoke(context.Background(), map[string]any{
		"departure_airport": "SFO",
		"arrival_airports":  []string{"NRT"},
		"departure_date":    "2026-10-15",
	})
	require.NoError(t, err)

	var out FlightsOutput
	decodeInto(t, result, &out)
	require.NotEmpty(t, out.Flights)
	for i, f := range out.Flights {
		assert.Equal(t, "NRT", f.ArrivalAirport)
		if i > 0 {
			assert.GreaterOrEqual(t, f.Price, out.Flights[i-1].Price)
		}
	}
}

func TestFlightsTool_MaxPriceAndResults(t *testing.T) {
	flights := NewFlightsTool(DefaultFixtures())

	result, err := flights.Invoke(context.Background(), map[string]any{
		"arrival_airports": []string{"NRT", "HND"},
		"departure_date":   "2026-10-15",
		"max_price":        700,
		"max_results":      1,
	})
	require.NoError(t, err)

	var out FlightsOutput
	decodeInto(t, result, &out)
	require.Len(t, out.Flights, 1)
	assert.LessOrEqual(t, out.Flights[0].Price, 700.0)
}

func TestFlightsTool_RequiresDate(t *testing.T) {
	flights := NewFlightsTool(DefaultFixtures())

	_, err := flights.Invoke(context.Background(), map[string]any{
		"arrival_airports": []string{"NRT"},
	})
	assert.Equal(t, types.TOOL_INVALID_INPUT, types.CodeOf(err))
}

func TestLodgingTool_NeighborhoodAndNights(t *testing.T) {
	lodging := NewLodgingTool(DefaultFixtures())

	result, err := lodging.Invoke(context.Background(), map[string]any{
		"neighborhood": "shibuya",
		"start_date":   "2026-10-15",
		"end_date":     "2026-10-20",
	})
	require.NoError(t, err)

	var out LodgingOutput
	decodeInto(t, result, &out)
	require.Len(t, out.LodgingOptions, 1)
	assert.Equal(t, "Shibuya Stream Hotel", out.LodgingOptions[0].Name)
	assert.Equal(t, 5, out.Nights)
}

func TestLodgingTool_EmptyNeighborhoodWidensSearch(t *testing.T) {
	lodging := NewLodgingTool(DefaultFixtures())

	result, err := lodging.Invoke(context.Background(), map[string]any{
		"start_date": "2026-10-15",
		"end_date":   "2026-10-16",
		"max_price":  100,
	})
	require.NoError(t, err)

	var out LodgingOutput
	decodeInto(t, result, &out)
	require.Len(t, out.LodgingOptions, 1)
	assert.Equal(t, "Ueno Budget Inn", out.LodgingOptions[0].Name)
}

func TestEventsTool_TagFilter(t *testing.T) {
	events := NewEventsTool(DefaultFixtures())

	result, err := events.Invoke(context.Background(), map[string]any{
		"location":   "Tokyo",
		"start_date": "2026-10-15",
		"end_date":   "2026-10-20",
		"tags":       []string{"culture"},
	})
	require.NoError(t, err)

	var out EventsOutput
	decodeInto(t, result, &out)
	require.NotEmpty(t, out.Events)
	for _, e := range out.Events {
		assert.True(t, hasAnyTag(e.Tags, []string{"culture"}), "event %s should carry the culture tag", e.Name)
	}
}

func TestWeatherTool_OneRowPerDay(t *testing.T) {
	weather := NewWeatherTool(DefaultFixtures())

	result, err := weather.Invoke(context.Background(), map[string]any{
		"location":   "Tokyo",
		"start_date": "2026-10-15",
		"end_date":   "2026-10-19",
	})
	require.NoError(t, err)

	var out WeatherOutput
	decodeInto(t, result, &out)
	require.Len(t, out.Daily, 5)
	assert.Equal(t, "2026-10-15", out.Daily[0].ForecastDate)
	assert.Equal(t, "2026-10-19", out.Daily[4].ForecastDate)
}

func TestWeatherTool_UnknownLocation(t *testing.T) {
	weather := NewWeatherTool(DefaultFixtures())

	_, err := weather.Invoke(context.Background(), map[string]any{
		"location":   "Atlantis",
		"start_date": "2026-10-15",
		"end_date":   "2026-10-16",
	})
	assert.Equal(t, types.TOOL_EXECUTION_ERROR, types.CodeOf(err))
}

func TestTransitTool_MatchesEitherDirection(t *testing.T) {
	transit := NewTransitTool(DefaultFixtures())

	result, err := transit.Invoke(context.Background(), map[string]any{
		"origin":      "Kyoto",
		"destination": "Tokyo",
	})
	require.NoError(t, err)

	var out TransitOutput
	decodeInto(t, result, &out)
	assert.Equal(t, "Shinkansen", out.Mode)
	assert.Equal(t, 135, out.TravelMinutes)
}

func TestCurrencyTool_DefaultsUnknownRates(t *testing.T) {
	currency := NewCurrencyTool(DefaultFixtures())

	result, err := currency.Invoke(context.Background(), map[string]any{
		"target_currencies": []string{"JPY", "XYZ"},
	})
	require.NoError(t, err)

	var out CurrencyOutput
	decodeInto(t, result, &out)
	assert.Equal(t, "USD", out.BaseCurrency)
	assert.Equal(t, 149.50, out.Rates["JPY"])
	assert.Equal(t, 1.0, out.Rates["XYZ"])
}

func TestGeocodeTool(t *testing.T) {
	geocode := NewGeocodeTool(DefaultFixtures())

	result, err := geocode.Invoke(context.Background(), map[string]any{"query": "Tokyo, Japan"})
	require.NoError(t, err)

	var out GeocodeOutput
	decodeInto(t, result, &out)
	assert.InDelta(t, 35.6895, out.Latitude, 0.001)
	assert.Equal(t, "Tokyo, Japan", out.DisplayName)

	_, err = geocode.Invoke(context.Background(), map[string]any{"query": "Nowhere"})
	assert.Error(t, err)
}

func TestLoadFixtures_FromYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
flights:
  - airline: TestAir
    flight_number: TA1
    departure_airport: AAA
    arrival_airport: BBB
    price: 100
weather:
  osaka:
    - weather_code: 0
      max_temp: 25
      min_temp: 15
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixtures.yaml"), []byte(content), 0o644))

	fixtures, err := LoadFixtures(dir)
	require.NoError(t, err)
	require.Len(t, fixtures.Flights, 1)
	assert.Equal(t, "TestAir", fixtures.Flights[0].Airline)
	assert.Len(t, fixtures.Weather["osaka"], 1)

	_, err = LoadFixtures(t.TempDir())
	assert.Error(t, err)
}

func TestRegisterAll(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, RegisterAll(registry, DefaultFixtures()))

	assert.Len(t, registry.List(), 7)

	// Double registration should fail on the first duplicate.
	assert.Error(t, RegisterAll(registry, DefaultFixtures()))
}
