package builtins

import (
	"fmt"

	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
)

// RegisterAll registers every builtin adapter on the registry.
func RegisterAll(registry tool.Registry, fixtures *Fixtures) error {
	tools := []tool.Tool{
		NewFlightsTool(fixtures),
		NewLodgingTool(fixtures),
		NewEventsTool(fixtures),
		NewWeatherTool(fixtures),
		NewTransitTool(fixtures),
		NewCurrencyTool(fixtures),
		NewGeocodeTool(fixtures),
	}

	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register builtin tool %q: %w", t.Name(), err)
		}
	}
	return nil
}
