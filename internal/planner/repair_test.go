package planner

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

func singleSlotSkeleton(category SlotCategory, item *ItineraryItem) *PlanSkeleton {
	slot := Slot{ID: types.NewID(), Category: category, TimeOfDay: Evening}
	if item != nil {
		item.SlotID = slot.ID
		slot.Item = item
	}
	return &PlanSkeleton{Days: []Day{{
		Date:        date("2026-10-15"),
		Destination: "Tokyo",
		Slots:       []Slot{slot},
	}}}
}

func repairerWith(t *testing.T, stubs ...tool.Tool) *Repairer {
	t.Helper()
	registry := tool.NewRegistry()
	for _, s := range stubs {
		require.NoError(t, registry.Register(s))
	}
	orch := NewOrchestrator(registry, WithBackoffInitial(time.Millisecond))
	return NewRepairer(orch, NewValidator("USD"), 3, slog.Default())
}

func lodgingStub(options ...map[string]any) *stubTool {
	return &stubTool{
		name: "lodging",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"lodging_options": options}, nil
		},
	}
}

func TestRepairer_BudgetSwapsExpensiveItem(t *testing.T) {
	expensive := types.NewMoney(500, "USD")
	skeleton := singleSlotSkeleton(CategoryLodging, &ItineraryItem{
		Title: "Imperial Suite",
		Cost:  expensive,
		Tags:  []string{"lodging"},
	})
	cs := constraintsWithBudget(100)
	cs.Dates = nil

	r := repairerWith(t, lodgingStub(
		map[string]any{"name": "Ueno Budget Inn", "neighborhood": "Ueno", "price_per_night": 90.0, "cancellation_policy": "free until 24h"},
	))

	violations := r.validator.Validate(skeleton, cs, nil)
	require.NotEmpty(t, violations)

	outcome := r.Repair(context.Background(), skeleton, cs, violations, nil)

	assert.Empty(t, outcome.Violations)
	assert.Equal(t, 1, outcome.Rounds)
	assert.False(t, outcome.Exhausted)

	require.NotEmpty(t, outcome.Decisions)
	swap := outcome.Decisions[0]
	assert.Equal(t, DecisionSwapItem, swap.Kind)
	assert.Equal(t, ViolationBudgetExceeded, swap.Violation)
	assert.NotEmpty(t, swap.Alternatives, "the rejected alternative is logged")

	_, slot, ok := outcome.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, ok)
	require.True(t, slot.Filled())
	assert.Equal(t, "Ueno Budget Inn", slot.Item.Title)
	assert.NotEmpty(t, outcome.Calls, "the swap's tool calls join the audit trail")
}

func TestRepairer_HardPreferenceProtectsItemFromSwap(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryLodging, &ItineraryItem{
		Title: "Asakusa View Ryokan",
		Cost:  types.NewMoney(500, "USD"),
		Tags:  []string{"lodging", "ryokan"},
	})
	cs := constraintsWithBudget(100)
	cs.Dates = nil
	cs.HardPrefs = []string{"ryokan"}

	r := repairerWith(t, lodgingStub(
		map[string]any{"name": "Cheap Hostel", "price_per_night": 30.0},
	))

	violations := r.validator.Validate(skeleton, cs, nil)
	outcome := r.Repair(context.Background(), skeleton, cs, violations, nil)

	// Nothing swappable: the plan is kept and the violation surfaced.
	assert.True(t, outcome.Exhausted)
	_, slot, _ := outcome.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	assert.Equal(t, "Asakusa View Ryokan", slot.Item.Title)

	require.NotEmpty(t, outcome.Decisions)
	assert.Equal(t, DecisionRelaxConstraint, outcome.Decisions[0].Kind)
	assert.Empty(t, outcome.Calls, "no re-query was attempted")
}

func TestRepairer_NoCheaperAlternativeKeepsOriginal(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryLodging, &ItineraryItem{
		Title: "Shibuya Stream Hotel",
		Cost:  types.NewMoney(210, "USD"),
		Tags:  []string{"lodging"},
	})
	cs := constraintsWithBudget(100)
	cs.Dates = nil

	r := repairerWith(t, lodgingStub()) // nothing cheaper exists

	violations := r.validator.Validate(skeleton, cs, nil)
	outcome := r.Repair(context.Background(), skeleton, cs, violations, nil)

	assert.True(t, outcome.Exhausted)
	_, slot, _ := outcome.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, slot.Filled(), "the original item is restored, not dropped")
	assert.Equal(t, "Shibuya Stream Hotel", slot.Item.Title)

	require.NotEmpty(t, outcome.Decisions)
	assert.Equal(t, DecisionRelaxConstraint, outcome.Decisions[0].Kind)
}

func TestRepairer_RoundBudgetBoundsTheLoop(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryActivity, nil)
	cs := &ConstraintSet{HardPrefs: []string{"activity"}}

	// The events source never has anything, so the violation is unfixable.
	r := repairerWith(t, &stubTool{
		name: "events",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"events": []map[string]any{}}, nil
		},
	})

	violations := r.validator.Validate(skeleton, cs, nil)
	require.NotEmpty(t, violations)
	initialScore := r.validator.QualityScore(skeleton, cs)

	outcome := r.Repair(context.Background(), skeleton, cs, violations, nil)

	assert.Equal(t, r.maxRounds, outcome.Rounds)
	assert.True(t, outcome.Exhausted)
	assert.NotEmpty(t, outcome.Violations)
	assert.GreaterOrEqual(t, outcome.Score, initialScore, "score never regresses across rounds")
	assert.GreaterOrEqual(t, len(outcome.Decisions), r.maxRounds)
}

func TestRepairer_WeatherConflictGoesIndoors(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryActivity, &ItineraryItem{
		Title:   "Meiji Shrine Walk",
		Cost:    types.NewMoney(0, "USD"),
		Tags:    []string{"activity"},
		Outdoor: true,
	})
	skeleton.Days[0].Weather = &DayWeather{PrecipProbability: 0.9}
	cs := &ConstraintSet{}

	r := repairerWith(t, &stubTool{
		name: "events",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"events": []map[string]any{
				{"name": "Meiji Shrine Walk", "location": "Tokyo", "is_indoor": false, "price": 0.0},
				{"name": "teamLab Planets", "location": "Tokyo", "is_indoor": true, "price": 32.0},
			}}, nil
		},
	})

	violations := r.validator.Validate(skeleton, cs, nil)
	require.NotEmpty(t, violations)

	outcome := r.Repair(context.Background(), skeleton, cs, violations, nil)

	assert.Empty(t, outcome.Violations)
	_, slot, _ := outcome.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, slot.Filled())
	assert.Equal(t, "teamLab Planets", slot.Item.Title)
	assert.False(t, slot.Item.Outdoor)

	require.NotEmpty(t, outcome.Decisions)
	assert.Equal(t, DecisionRefillSlot, outcome.Decisions[0].Kind)
	assert.Equal(t, ViolationWeatherConflict, outcome.Decisions[0].Violation)
}

func TestRepairer_DeadlineStopsTheLoop(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryLodging, &ItineraryItem{
		Title: "Imperial Suite",
		Cost:  types.NewMoney(500, "USD"),
		Tags:  []string{"lodging"},
	})
	cs := constraintsWithBudget(100)
	cs.Dates = nil

	r := repairerWith(t, lodgingStub())
	violations := r.validator.Validate(skeleton, cs, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := r.Repair(ctx, skeleton, cs, violations, nil)

	assert.True(t, outcome.DeadlineHit)
	assert.False(t, outcome.Exhausted, "deadline is reported distinctly from exhaustion")
	require.NotEmpty(t, outcome.Decisions)
	assert.Equal(t, DecisionDeadlineStop, outcome.Decisions[0].Kind)
	assert.NotNil(t, outcome.Skeleton, "the best plan so far is still returned")
}

func TestRepairer_NoViolationsIsANoop(t *testing.T) {
	skeleton := singleSlotSkeleton(CategoryLodging, &ItineraryItem{
		Title: "Ueno Budget Inn",
		Cost:  types.NewMoney(90, "USD"),
		Tags:  []string{"lodging"},
	})

	r := repairerWith(t)
	outcome := r.Repair(context.Background(), skeleton, &ConstraintSet{}, nil, nil)

	assert.Zero(t, outcome.Rounds)
	assert.Empty(t, outcome.Decisions)
	assert.Empty(t, outcome.Violations)
}
