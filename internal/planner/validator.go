package planner

import (
	"fmt"
	"sort"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// ViolationType identifies which constraint a plan breaks.
type ViolationType string

const (
	ViolationBudgetExceeded     ViolationType = "budget_exceeded"
	ViolationMissingCategory    ViolationType = "missing_category"
	ViolationDateCoverage       ViolationType = "date_coverage"
	ViolationInfeasibleSchedule ViolationType = "infeasible_schedule"
	ViolationWeatherConflict    ViolationType = "weather_conflict"
	ViolationPreferenceMismatch ViolationType = "preference_mismatch"
)

// Severity splits violations into hard (must repair) and soft (feeds the
// quality score and repair prioritization, never blocks acceptance).
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// hardOrder ranks hard violation types for the most-severe-first ordering.
var hardOrder = map[ViolationType]int{
	ViolationDateCoverage:       0,
	ViolationBudgetExceeded:     1,
	ViolationMissingCategory:    2,
	ViolationInfeasibleSchedule: 3,
}

// Violation records one constraint breach. Generated fresh each validation
// pass; never mutated, only superseded by the next pass.
type Violation struct {
	Type        ViolationType `json:"type"`
	Severity    Severity      `json:"severity"`
	Constraint  string        `json:"constraint"`
	SlotIDs     []types.ID    `json:"slot_ids,omitempty"`
	Excess      *types.Money  `json:"excess,omitempty"`
	Description string        `json:"description"`
}

// HardViolations filters to hard severity.
func HardViolations(violations []Violation) []Violation {
	var hard []Violation
	for _, v := range violations {
		if v.Severity == SeverityHard {
			hard = append(hard, v)
		}
	}
	return hard
}

// precipConflictThreshold marks a day too wet for outdoor plans.
const precipConflictThreshold = 0.6

// Validator checks a filled skeleton against its constraints. Pure: no tool
// calls, no LLM, deterministic arithmetic and set logic only.
type Validator struct {
	baseCurrency string
}

// NewValidator creates a Validator. Item costs are assumed to be priced in
// baseCurrency; budgets in other currencies are converted with rates passed
// to Validate.
func NewValidator(baseCurrency string) *Validator {
	return &Validator{baseCurrency: baseCurrency}
}

// Validate returns violations ordered most severe first; an empty slice
// means the plan is acceptable. rates maps currency codes to their value in
// baseCurrency terms and may be nil when the budget already uses it.
func (v *Validator) Validate(skeleton *PlanSkeleton, cs *ConstraintSet, rates map[string]float64) []Violation {
	var violations []Violation

	violations = append(violations, v.checkBudget(skeleton, cs, rates)...)
	violations = append(violations, v.checkHardCategories(skeleton, cs)...)
	violations = append(violations, v.checkDateCoverage(skeleton, cs)...)
	violations = append(violations, v.checkWeather(skeleton)...)
	violations = append(violations, v.checkSoftPreferences(skeleton, cs)...)

	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityHard
		}
		return hardOrder[a.Type] < hardOrder[b.Type]
	})
	return violations
}

func (v *Validator) checkBudget(skeleton *PlanSkeleton, cs *ConstraintSet, rates map[string]float64) []Violation {
	if cs.Budget == nil || cs.Budget.Amount <= 0 {
		return nil
	}

	budget := *cs.Budget
	if budget.Currency != v.baseCurrency {
		rate, ok := rates[budget.Currency]
		if ok && rate > 0 {
			// rates give 1 base unit in budget-currency terms, so divide.
			budget = types.NewMoney(budget.Amount/rate, v.baseCurrency)
		}
	}

	total := skeleton.TotalCost(v.baseCurrency)
	if total.Amount <= budget.Amount {
		return nil
	}

	excess := types.NewMoney(total.Amount-budget.Amount, v.baseCurrency)
	return []Violation{{
		Type:       ViolationBudgetExceeded,
		Severity:   SeverityHard,
		Constraint: "budget",
		SlotIDs:    expensiveSlotIDs(skeleton),
		Excess:     &excess,
		Description: fmt.Sprintf("total cost %s exceeds budget %s by %s",
			total.String(), budget.String(), excess.String()),
	}}
}

func (v *Validator) checkHardCategories(skeleton *PlanSkeleton, cs *ConstraintSet) []Violation {
	var violations []Violation
	for _, pref := range cs.HardPrefs {
		if skeleton.CategoryFilled(pref) {
			continue
		}
		violations = append(violations, Violation{
			Type:        ViolationMissingCategory,
			Severity:    SeverityHard,
			Constraint:  pref,
			SlotIDs:     slotIDsForCategory(skeleton, pref),
			Description: fmt.Sprintf("no itinerary item covers required category %q", pref),
		})
	}
	return violations
}

func (v *Validator) checkDateCoverage(skeleton *PlanSkeleton, cs *ConstraintSet) []Violation {
	if cs.Dates == nil || !cs.Dates.Anchored() || cs.Dates.Inferred {
		return nil
	}

	want := cs.Dates.Days()
	have := make(map[string]bool, len(skeleton.Days))
	for i := range skeleton.Days {
		have[skeleton.Days[i].DateString()] = true
	}

	var missing []string
	for i := 0; i < want; i++ {
		date := cs.Dates.Start.AddDate(0, 0, i).Format(dateLayout)
		if !have[date] {
			missing = append(missing, date)
		}
	}
	if len(missing) == 0 && len(skeleton.Days) == want {
		return nil
	}

	return []Violation{{
		Type:       ViolationDateCoverage,
		Severity:   SeverityHard,
		Constraint: "dates",
		Description: fmt.Sprintf("plan covers %d days but the range requires %d (missing: %v)",
			len(skeleton.Days), want, missing),
	}}
}

func (v *Validator) checkWeather(skeleton *PlanSkeleton) []Violation {
	var violations []Violation
	for i := range skeleton.Days {
		day := &skeleton.Days[i]
		if day.Weather == nil || day.Weather.PrecipProbability < precipConflictThreshold {
			continue
		}
		for j := range day.Slots {
			slot := &day.Slots[j]
			if slot.Filled() && slot.Item.Outdoor {
				violations = append(violations, Violation{
					Type:       ViolationWeatherConflict,
					Severity:   SeveritySoft,
					Constraint: "weather",
					SlotIDs:    []types.ID{slot.ID},
					Description: fmt.Sprintf("%q on %s is outdoors with %.0f%% precipitation probability",
						slot.Item.Title, day.DateString(), day.Weather.PrecipProbability*100),
				})
			}
		}
	}
	return violations
}

func (v *Validator) checkSoftPreferences(skeleton *PlanSkeleton, cs *ConstraintSet) []Violation {
	var unmatched []string
	for _, pref := range cs.SoftPrefs {
		if !skeleton.CategoryFilled(pref.Tag) {
			unmatched = append(unmatched, pref.Tag)
		}
	}
	if len(unmatched) == 0 {
		return nil
	}
	return []Violation{{
		Type:        ViolationPreferenceMismatch,
		Severity:    SeveritySoft,
		Constraint:  "soft_preferences",
		Description: fmt.Sprintf("no itinerary item matches preferred tags %v", unmatched),
	}}
}

// QualityScore rates the plan in [0,1]: slot fill ratio plus weighted soft
// preference coverage, discounted for soft weather conflicts. Hard violations
// do not factor in here; they are gates, not gradations.
func (v *Validator) QualityScore(skeleton *PlanSkeleton, cs *ConstraintSet) float64 {
	totalSlots, filledSlots := 0, 0
	for i := range skeleton.Days {
		for j := range skeleton.Days[i].Slots {
			totalSlots++
			if skeleton.Days[i].Slots[j].Filled() {
				filledSlots++
			}
		}
	}
	if totalSlots == 0 {
		return 0
	}
	fillRatio := float64(filledSlots) / float64(totalSlots)

	prefScore := 1.0
	if len(cs.SoftPrefs) > 0 {
		var total, matched float64
		for _, pref := range cs.SoftPrefs {
			weight := pref.Weight
			if weight <= 0 {
				weight = 1
			}
			total += weight
			if skeleton.CategoryFilled(pref.Tag) {
				matched += weight
			}
		}
		prefScore = matched / total
	}

	conflictPenalty := 0.05 * float64(len(v.checkWeather(skeleton)))
	if conflictPenalty > 0.3 {
		conflictPenalty = 0.3
	}

	score := 0.6*fillRatio + 0.4*prefScore - conflictPenalty
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// expensiveSlotIDs orders filled slot IDs by descending item cost, the
// natural targets of a cost repair.
func expensiveSlotIDs(skeleton *PlanSkeleton) []types.ID {
	type costed struct {
		id   types.ID
		cost float64
	}
	var slots []costed
	for i := range skeleton.Days {
		for j := range skeleton.Days[i].Slots {
			slot := &skeleton.Days[i].Slots[j]
			if slot.Filled() && slot.Item.Cost.Amount > 0 {
				slots = append(slots, costed{slot.ID, slot.Item.Cost.Amount})
			}
		}
	}
	sort.SliceStable(slots, func(a, b int) bool { return slots[a].cost > slots[b].cost })

	ids := make([]types.ID, len(slots))
	for i, s := range slots {
		ids[i] = s.id
	}
	return ids
}

// slotIDsForCategory returns unfilled slots whose category matches name,
// the candidates a repair should refill.
func slotIDsForCategory(skeleton *PlanSkeleton, name string) []types.ID {
	var ids []types.ID
	for i := range skeleton.Days {
		for j := range skeleton.Days[i].Slots {
			slot := &skeleton.Days[i].Slots[j]
			if !slot.Filled() && string(slot.Category) == name {
				ids = append(ids, slot.ID)
			}
		}
	}
	return ids
}
