package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// RepairOutcome is the result of running the repair loop: the best-scoring
// skeleton seen across rounds, the violations that remain against it, and the
// audit trail of what was tried. Exhausted means the round budget ran out
// with hard violations still standing; DeadlineHit means the run deadline
// ended the loop early. Neither is an error: partial success beats no answer.
type RepairOutcome struct {
	Skeleton    *PlanSkeleton
	Violations  []Violation
	Score       float64
	Rounds      int
	Decisions   []Decision
	Calls       []tool.Call
	Citations   []knowledge.Citation
	Exhausted   bool
	DeadlineHit bool
}

// Repairer drives bounded violation repair: hard violations first, minimal
// corrective actions (swap the most expensive non-protected item before
// relaxing anything the user stated), every action logged as a Decision.
type Repairer struct {
	orchestrator *Orchestrator
	validator    *Validator
	maxRounds    int
	logger       *slog.Logger
}

// NewRepairer creates a Repairer. maxRounds bounds the loop; 0 disables
// repair entirely.
func NewRepairer(orchestrator *Orchestrator, validator *Validator, maxRounds int, logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{
		orchestrator: orchestrator,
		validator:    validator,
		maxRounds:    maxRounds,
		logger:       logger,
	}
}

// Repair iterates detect-and-fix rounds until the plan is acceptable, the
// round budget is spent, or the context deadline fires. The returned score is
// the best seen, so it never regresses across rounds.
func (r *Repairer) Repair(ctx context.Context, skeleton *PlanSkeleton, cs *ConstraintSet, violations []Violation, rates map[string]float64) *RepairOutcome {
	outcome := &RepairOutcome{
		Skeleton:   skeleton,
		Violations: violations,
		Score:      r.validator.QualityScore(skeleton, cs),
	}

	best := skeleton
	bestScore := outcome.Score
	bestViolations := violations

	for round := 1; round <= r.maxRounds; round++ {
		if len(outcome.Violations) == 0 {
			return outcome
		}
		if ctx.Err() != nil {
			outcome.DeadlineHit = true
			outcome.Decisions = append(outcome.Decisions, newDecision(round, DecisionDeadlineStop, "",
				"", "run deadline reached, keeping best plan so far", 1.0))
			break
		}

		target := outcome.Violations[0]
		r.logger.InfoContext(ctx, "repair round",
			"round", round,
			"violation", target.Type,
			"severity", target.Severity)

		repaired, decision, acted := r.applyAction(ctx, round, outcome.Skeleton, cs, target, outcome)
		outcome.Rounds = round
		if decision != nil {
			outcome.Decisions = append(outcome.Decisions, *decision)
		}
		if !acted {
			// Nothing further to try for the top violation; stop rather
			// than burn rounds repeating the same non-action.
			break
		}

		outcome.Violations = r.validator.Validate(repaired, cs, rates)
		score := r.validator.QualityScore(repaired, cs)

		if betterPlan(score, outcome.Violations, bestScore, bestViolations) {
			best = repaired
			bestScore = score
			bestViolations = outcome.Violations
			outcome.Skeleton = repaired
		} else {
			// Keep the better plan; the failed attempt stays in the audit
			// trail through its Decision and recorded calls.
			outcome.Decisions = append(outcome.Decisions, newDecision(round, DecisionKeepBest, target.Type,
				decisionSlot(target), "repair attempt scored worse, reverting to best plan seen", 0.8))
			outcome.Skeleton = best
			outcome.Violations = bestViolations
		}
		outcome.Score = bestScore

		if len(outcome.Violations) == 0 {
			return outcome
		}
	}

	outcome.Skeleton = best
	outcome.Score = bestScore
	outcome.Violations = bestViolations
	if len(HardViolations(outcome.Violations)) > 0 && !outcome.DeadlineHit {
		outcome.Exhausted = true
	}
	return outcome
}

// applyAction picks and runs the minimal corrective action for the most
// severe violation. Returns the updated skeleton, the decision describing
// the action, and whether anything was attempted.
func (r *Repairer) applyAction(ctx context.Context, round int, skeleton *PlanSkeleton, cs *ConstraintSet, target Violation, outcome *RepairOutcome) (*PlanSkeleton, *Decision, bool) {
	switch target.Type {
	case ViolationBudgetExceeded:
		return r.repairBudget(ctx, round, skeleton, cs, target, outcome)
	case ViolationMissingCategory:
		return r.repairMissingCategory(ctx, round, skeleton, cs, target, outcome)
	case ViolationWeatherConflict:
		return r.repairWeather(ctx, round, skeleton, cs, target, outcome)
	case ViolationPreferenceMismatch:
		// Preference coverage was already maximized at fill time; relaxing
		// the preference is the only remaining move, and it is the user's
		// call, not ours.
		d := newDecision(round, DecisionRelaxConstraint, target.Type, "",
			"soft preferences unmatched by available options; surfacing instead of relaxing silently", 0.9)
		return skeleton, &d, false
	default:
		return skeleton, nil, false
	}
}

// repairBudget swaps the most expensive item that is not protected by a hard
// preference for a cheaper alternative from the same tool.
func (r *Repairer) repairBudget(ctx context.Context, round int, skeleton *PlanSkeleton, cs *ConstraintSet, target Violation, outcome *RepairOutcome) (*PlanSkeleton, *Decision, bool) {
	slotID, item := r.swapCandidate(skeleton, cs, target)
	if item == nil {
		d := newDecision(round, DecisionRelaxConstraint, target.Type, "",
			"every costed item is protected by a hard preference; keeping plan and surfacing the budget violation", 0.7)
		return skeleton, &d, false
	}

	// Cap below the current choice so the re-query must find something
	// strictly cheaper.
	opts := FillOptions{MaxPrice: item.Cost.Amount - 0.01, Relax: true}
	result, err := r.orchestrator.Refill(ctx, skeleton, cs, []types.ID{slotID}, opts)
	if err != nil {
		return skeleton, nil, false
	}
	outcome.Calls = append(outcome.Calls, result.Calls...)
	outcome.Citations = append(outcome.Citations, result.Citations...)

	_, slot, ok := result.Skeleton.Slot(slotID)
	if !ok || !slot.Filled() {
		d := newDecision(round, DecisionRelaxConstraint, target.Type, slotID,
			fmt.Sprintf("no alternative cheaper than %s for %q; keeping original choice", item.Cost.String(), item.Title), 0.6)
		// Re-query found nothing: restore the original item.
		restored := skeleton.Clone()
		return restored, &d, false
	}

	d := newDecision(round, DecisionSwapItem, target.Type, slotID,
		fmt.Sprintf("swapped %q (%s) for %q (%s) to reduce total cost",
			item.Title, item.Cost.String(), slot.Item.Title, slot.Item.Cost.String()),
		0.85, "relax a user-stated constraint (rejected: substitution attempted first)")
	return result.Skeleton, &d, true
}

// swapCandidate picks the most expensive item whose slot category and tags
// are not pinned by a hard preference.
func (r *Repairer) swapCandidate(skeleton *PlanSkeleton, cs *ConstraintSet, target Violation) (types.ID, *ItineraryItem) {
	for _, id := range target.SlotIDs {
		_, slot, ok := skeleton.Slot(id)
		if !ok || !slot.Filled() {
			continue
		}
		if cs.HasHardPref(string(slot.Category)) {
			continue
		}
		protected := false
		for _, tag := range slot.Item.Tags {
			if cs.HasHardPref(tag) {
				protected = true
				break
			}
		}
		if !protected {
			return id, slot.Item
		}
	}
	return "", nil
}

// repairMissingCategory re-issues exactly the violating slots' calls with
// relaxed filtering.
func (r *Repairer) repairMissingCategory(ctx context.Context, round int, skeleton *PlanSkeleton, cs *ConstraintSet, target Violation, outcome *RepairOutcome) (*PlanSkeleton, *Decision, bool) {
	if len(target.SlotIDs) == 0 {
		d := newDecision(round, DecisionRelaxConstraint, target.Type, "",
			fmt.Sprintf("no slot exists for required category %q; plan structure cannot satisfy it", target.Constraint), 0.6)
		return skeleton, &d, false
	}

	result, err := r.orchestrator.Refill(ctx, skeleton, cs, target.SlotIDs, FillOptions{Relax: true})
	if err != nil {
		return skeleton, nil, false
	}
	outcome.Calls = append(outcome.Calls, result.Calls...)
	outcome.Citations = append(outcome.Citations, result.Citations...)

	d := newDecision(round, DecisionRefillSlot, target.Type, target.SlotIDs[0],
		fmt.Sprintf("re-queried %d slot(s) for category %q with widened filters", len(target.SlotIDs), target.Constraint), 0.8)
	return result.Skeleton, &d, true
}

// repairWeather swaps a rained-out outdoor activity for an indoor one.
func (r *Repairer) repairWeather(ctx context.Context, round int, skeleton *PlanSkeleton, cs *ConstraintSet, target Violation, outcome *RepairOutcome) (*PlanSkeleton, *Decision, bool) {
	if len(target.SlotIDs) == 0 {
		return skeleton, nil, false
	}

	result, err := r.orchestrator.Refill(ctx, skeleton, cs, target.SlotIDs, FillOptions{PreferIndoor: true})
	if err != nil {
		return skeleton, nil, false
	}
	outcome.Calls = append(outcome.Calls, result.Calls...)
	outcome.Citations = append(outcome.Citations, result.Citations...)

	d := newDecision(round, DecisionRefillSlot, target.Type, target.SlotIDs[0],
		"replaced outdoor activity on a high-precipitation day with an indoor alternative", 0.75)
	return result.Skeleton, &d, true
}

// betterPlan prefers fewer hard violations, then fewer violations overall,
// then a higher score.
func betterPlan(score float64, violations []Violation, bestScore float64, bestViolations []Violation) bool {
	hard, bestHard := len(HardViolations(violations)), len(HardViolations(bestViolations))
	if hard != bestHard {
		return hard < bestHard
	}
	if len(violations) != len(bestViolations) {
		return len(violations) < len(bestViolations)
	}
	return score >= bestScore
}

func decisionSlot(v Violation) types.ID {
	if len(v.SlotIDs) > 0 {
		return v.SlotIDs[0]
	}
	return ""
}
