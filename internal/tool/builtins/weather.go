package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// WeatherInput are the arguments accepted by the weather adapter.
// Location selects the climatological pattern; coordinates are carried
// through for provenance but the fixture dataset is keyed by name.
type WeatherInput struct {
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// DailyForecast is one day of the forecast.
type DailyForecast struct {
	ForecastDate      string  `json:"forecast_date"`
	MaxTemp           float64 `json:"max_temp"`
	MinTemp           float64 `json:"min_temp"`
	WeatherCode       int     `json:"weather_code"`
	PrecipProbability float64 `json:"precip_probability"`
}

// WeatherOutput is the weather adapter result payload.
type WeatherOutput struct {
	Daily []DailyForecast `json:"daily"`
}

// WeatherTool produces a deterministic daily forecast from the location's
// climatological pattern, one row per day in the requested range.
type WeatherTool struct {
	fixtures *Fixtures
}

// NewWeatherTool creates a weather adapter over the given fixtures.
func NewWeatherTool(fixtures *Fixtures) *WeatherTool {
	return &WeatherTool{fixtures: fixtures}
}

func (t *WeatherTool) Name() string { return "weather" }

func (t *WeatherTool) Description() string {
	return "Fetches daily weather forecasts for a location between a start and end date."
}

func (t *WeatherTool) Tags() []string { return []string{"travel", "weather"} }

// Invoke cycles the location's pattern across the date range so any trip
// length gets a full forecast.
func (t *WeatherTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input WeatherInput
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
	if end.Before(start) {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "end_date must not be before start_date")
	}

	pattern, ok := t.fixtures.Weather[strings.ToLower(input.Location)]
	if !ok || len(pattern) == 0 {
		return nil, types.NewError(types.TOOL_EXECUTION_ERROR,
			fmt.Sprintf("no weather data for location %q", input.Location))
	}

	var daily []DailyForecast
	for i, d := 0, start; !d.After(end); i, d = i+1, d.AddDate(0, 0, 1) {
		day := pattern[i%len(pattern)]
		daily = append(daily, DailyForecast{
			ForecastDate:      d.Format(dateLayout),
			MaxTemp:           day.MaxTemp,
			MinTemp:           day.MinTemp,
			WeatherCode:       day.WeatherCode,
			PrecipProbability: day.PrecipProbability,
		})
	}

	return encodeResult(WeatherOutput{Daily: daily})
}
