package planner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/session"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// PlanningSessionState threads one conversation's planning data across
// requests: the current constraints and skeleton, the full append-only
// records of tool calls and decisions, and the repair counter. Exactly one
// orchestration run owns it at a time; the Planner serializes access per
// thread.
type PlanningSessionState struct {
	ThreadID     string                `json:"thread_id"`
	Constraints  *ConstraintSet        `json:"constraints,omitempty"`
	Skeleton     *PlanSkeleton         `json:"skeleton,omitempty"`
	ToolCalls    []tool.Call           `json:"tool_calls,omitempty"`
	Decisions    []Decision            `json:"decisions,omitempty"`
	Citations    []knowledge.Citation  `json:"citations,omitempty"`
	Rates        map[string]float64    `json:"rates,omitempty"`
	RepairRounds int                   `json:"repair_rounds"`
	Version      int                   `json:"version"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// newSessionState creates an empty state for a thread.
func newSessionState(threadID string) *PlanningSessionState {
	return &PlanningSessionState{ThreadID: threadID}
}

// recordRun appends a run's records to the state. ToolCalls and Decisions
// are append-only across the session; the skeleton and constraints are
// replaced by the run's final versions.
func (s *PlanningSessionState) recordRun(cs *ConstraintSet, skeleton *PlanSkeleton, calls []tool.Call, decisions []Decision, citations []knowledge.Citation, rates map[string]float64, repairRounds int) {
	s.Constraints = cs
	s.Skeleton = skeleton
	s.ToolCalls = append(s.ToolCalls, calls...)
	s.Decisions = append(s.Decisions, decisions...)
	for _, c := range citations {
		s.Citations = appendCitation(s.Citations, c)
	}
	if len(rates) > 0 {
		if s.Rates == nil {
			s.Rates = map[string]float64{}
		}
		for currency, rate := range rates {
			s.Rates[currency] = rate
		}
	}
	s.RepairRounds += repairRounds
	s.UpdatedAt = time.Now().UTC()
}

// loadState reads a thread's state from the store. A missing session returns
// (nil, nil); storage failures propagate.
func loadState(ctx context.Context, store session.Store, threadID string) (*PlanningSessionState, error) {
	record, err := store.Get(ctx, threadID)
	if err != nil {
		if types.CodeOf(err) == types.SESSION_NOT_FOUND {
			return nil, nil
		}
		return nil, err
	}

	var state PlanningSessionState
	if err := json.Unmarshal(record.Payload, &state); err != nil {
		return nil, types.WrapError(types.SESSION_STORE_FAILED,
			"failed to decode session state", err)
	}
	state.Version = record.Version
	return &state, nil
}

// saveState writes the state back, adopting the store's version counter.
func saveState(ctx context.Context, store session.Store, state *PlanningSessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return types.WrapError(types.SESSION_STORE_FAILED,
			"failed to encode session state", err)
	}

	record, err := store.Put(ctx, state.ThreadID, payload)
	if err != nil {
		return err
	}
	state.Version = record.Version
	return nil
}
