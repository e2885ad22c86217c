package tool

import (
	"context"
)

// Tool represents an atomic, stateless information adapter that can be
// invoked by the planning orchestrator. Tools are the uniform surface over
// external providers (flights, lodging, events, weather, transit, currency,
// geocoding, knowledge retrieval).
//
// Invoke takes loosely-typed arguments so the orchestrator can forward
// LLM-produced parameters without a per-tool wire format; implementations
// decode them into typed inputs and validate before doing any work.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Tags returns a list of tags for categorization and discovery
	Tags() []string

	// Invoke runs the tool with the given arguments and returns its result.
	// Context is used for cancellation, deadlines, and request-scoped values.
	Invoke(ctx context.Context, args map[string]any) (map[string]any, error)
}
