// Package planner implements the itinerary planning orchestrator: constraint
// extraction from free-form requests, deterministic skeleton generation,
// dependency-aware concurrent tool dispatch, constraint validation, bounded
// repair, and synthesis of a cited, explainable itinerary.
//
// The entry point is Planner, which serializes runs per conversation thread
// and persists PlanningSessionState between requests. All other components
// are pure or side-effect-free over shared state: they receive data by value
// or read-only reference and return new data, and only the owning run mutates
// the session record.
package planner
