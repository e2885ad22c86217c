package planner

import (
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// DecisionKind classifies an orchestrator or repair choice.
type DecisionKind string

const (
	// DecisionSwapItem replaced an expensive item with a cheaper alternative.
	DecisionSwapItem DecisionKind = "swap_item"

	// DecisionRefillSlot re-issued a slot's tool call with relaxed filtering.
	DecisionRefillSlot DecisionKind = "refill_slot"

	// DecisionRelaxConstraint accepted a violation rather than change a
	// user-stated constraint further.
	DecisionRelaxConstraint DecisionKind = "relax_constraint"

	// DecisionKeepBest reverted to the best-scoring plan seen so far.
	DecisionKeepBest DecisionKind = "keep_best"

	// DecisionDeadlineStop ended the run early at the overall deadline.
	DecisionDeadlineStop DecisionKind = "deadline_stop"
)

// Decision is one append-only log entry explaining a choice: what was chosen,
// why, with what confidence, and what else was considered.
type Decision struct {
	ID           types.ID      `json:"id"`
	Round        int           `json:"round"`
	Kind         DecisionKind  `json:"kind"`
	Violation    ViolationType `json:"violation,omitempty"`
	SlotID       types.ID      `json:"slot_id,omitempty"`
	Rationale    string        `json:"rationale"`
	Confidence   float64       `json:"confidence"`
	Alternatives []string      `json:"alternatives,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

func newDecision(round int, kind DecisionKind, violation ViolationType, slotID types.ID, rationale string, confidence float64, alternatives ...string) Decision {
	return Decision{
		ID:           types.NewID(),
		Round:        round,
		Kind:         kind,
		Violation:    violation,
		SlotID:       slotID,
		Rationale:    rationale,
		Confidence:   confidence,
		Alternatives: alternatives,
		Timestamp:    time.Now(),
	}
}
