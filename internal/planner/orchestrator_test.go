package planner

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool/builtins"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// stubTool is a scriptable adapter for failure-path tests.
type stubTool struct {
	name   string
	invoke func(ctx context.Context, args map[string]any) (map[string]any, error)
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "test stub" }
func (s *stubTool) Tags() []string      { return []string{"test"} }
func (s *stubTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return s.invoke(ctx, args)
}

func fullRegistry(t *testing.T) tool.Registry {
	t.Helper()
	registry := tool.NewRegistry()
	require.NoError(t, builtins.RegisterAll(registry, builtins.DefaultFixtures()))

	store := knowledge.NewMemoryStore()
	require.NoError(t, store.Add(context.Background(), knowledge.Passage{
		ID:               "tokyo-food-1",
		Title:            "Tokyo dining notes",
		Source:           "trip-journal.md",
		DestinationScope: "Tokyo",
		Text:             "Best food in Tokyo: dining at the standing sushi bars near the station, restaurants in Nakameguro for dinner.",
	}))
	require.NoError(t, registry.Register(knowledge.NewRetrievalTool(store, 5)))
	return registry
}

func tokyoSkeleton(t *testing.T) (*PlanSkeleton, *ConstraintSet) {
	t.Helper()
	cs := &ConstraintSet{
		Dates:        &DateRange{Start: date("2026-10-15"), End: date("2026-10-16")},
		Origin:       "SFO",
		Destinations: []string{"Tokyo"},
		SoftPrefs:    []SoftPreference{{Tag: "culture", Weight: 1}},
	}
	skeleton, resolved := NewGenerator(3).Generate(cs)
	return skeleton, resolved
}

func TestOrchestrator_FillResolvesEverySlot(t *testing.T) {
	skeleton, cs := tokyoSkeleton(t)
	orch := NewOrchestrator(fullRegistry(t), WithSimilarityThreshold(0.05))

	result, err := orch.Fill(context.Background(), skeleton, cs)
	require.NoError(t, err)

	assert.Empty(t, result.Skeleton.UnfilledSlotIDs(), "every slot gets an item")
	assert.NotEmpty(t, result.Calls)
	assert.NotEmpty(t, result.Citations, "meal slots cite the knowledge base")

	for _, item := range result.Skeleton.FilledItems() {
		require.NotEmpty(t, item.Provenance, "item %q has no provenance", item.Title)
		ref := item.Provenance[0].Ref
		assert.Contains(t, ref, "#", "tool provenance carries the call id: %q", ref)
	}

	// The weather lookup ran after geocoding and landed on the days.
	for _, day := range result.Skeleton.Days {
		assert.NotNil(t, day.Weather, "day %s has no forecast", day.DateString())
	}

	// The input skeleton was not mutated.
	assert.NotEmpty(t, skeleton.UnfilledSlotIDs())
}

func TestOrchestrator_FillLeavesInputUntouchedOnPartialFailure(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, builtins.RegisterAll(registry, builtins.DefaultFixtures()))
	// No knowledge tool registered: meal tasks fail, the rest succeed.

	skeleton, cs := tokyoSkeleton(t)
	orch := NewOrchestrator(registry)

	result, err := orch.Fill(context.Background(), skeleton, cs)
	require.NoError(t, err, "a failed slot group never aborts the run")

	unfilled := result.Skeleton.UnfilledSlotIDs()
	assert.NotEmpty(t, unfilled)
	for _, id := range unfilled {
		_, slot, ok := result.Skeleton.Slot(id)
		require.True(t, ok)
		assert.Equal(t, CategoryMeal, slot.Category)
		assert.NotEmpty(t, slot.FailureReason)
	}
}

func TestOrchestrator_RetryRecoversFromTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&stubTool{
		name: "lodging",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if attempts.Add(1) <= 2 {
				return nil, types.WrapRetryableError(types.TOOL_UNAVAILABLE, "provider flaked", nil)
			}
			return map[string]any{
				"lodging_options": []map[string]any{
					{"name": "Recovery Inn", "neighborhood": "Ueno", "price_per_night": 90.0, "cancellation_policy": "free until 24h"},
				},
			}, nil
		},
	}))

	skeleton := &PlanSkeleton{Days: []Day{{
		Date:        date("2026-10-15"),
		Destination: "Tokyo",
		Slots:       []Slot{{ID: types.NewID(), Category: CategoryLodging, TimeOfDay: Evening}},
	}}}
	cs := &ConstraintSet{Destinations: []string{"Tokyo"}}

	orch := NewOrchestrator(registry,
		WithToolRetries(2),
		WithBackoffInitial(time.Millisecond))

	result, err := orch.Refill(context.Background(), skeleton, cs, skeleton.UnfilledSlotIDs(), FillOptions{})
	require.NoError(t, err)

	require.Len(t, result.Calls, 3, "each attempt is its own recorded call")
	assert.False(t, result.Calls[0].Succeeded())
	assert.False(t, result.Calls[1].Succeeded())
	assert.True(t, result.Calls[2].Succeeded())
	assert.Equal(t, 3, result.Calls[2].Attempt)

	_, slot, ok := result.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, ok)
	require.True(t, slot.Filled())
	assert.Equal(t, "Recovery Inn", slot.Item.Title)
}

func TestOrchestrator_RetryBudgetExhaustionMarksSlotUnfilled(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&stubTool{
		name: "lodging",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, types.WrapRetryableError(types.TOOL_UNAVAILABLE, "provider down", nil)
		},
	}))

	skeleton := &PlanSkeleton{Days: []Day{{
		Date:        date("2026-10-15"),
		Destination: "Tokyo",
		Slots:       []Slot{{ID: types.NewID(), Category: CategoryLodging, TimeOfDay: Evening}},
	}}}
	cs := &ConstraintSet{Destinations: []string{"Tokyo"}}

	orch := NewOrchestrator(registry,
		WithToolRetries(2),
		WithBackoffInitial(time.Millisecond))

	result, err := orch.Refill(context.Background(), skeleton, cs, skeleton.UnfilledSlotIDs(), FillOptions{})
	require.NoError(t, err)

	assert.Len(t, result.Calls, 3)
	_, slot, ok := result.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, ok)
	assert.False(t, slot.Filled())
	assert.Contains(t, slot.FailureReason, "failed after 3 attempts")
}

func TestOrchestrator_NonRetryableFailureStopsImmediately(t *testing.T) {
	var attempts atomic.Int32
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&stubTool{
		name: "lodging",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			attempts.Add(1)
			return nil, types.NewError(types.TOOL_INVALID_INPUT, "bad arguments")
		},
	}))

	skeleton := &PlanSkeleton{Days: []Day{{
		Date:        date("2026-10-15"),
		Destination: "Tokyo",
		Slots:       []Slot{{ID: types.NewID(), Category: CategoryLodging, TimeOfDay: Evening}},
	}}}
	cs := &ConstraintSet{Destinations: []string{"Tokyo"}}

	orch := NewOrchestrator(registry, WithToolRetries(2), WithBackoffInitial(time.Millisecond))
	result, err := orch.Refill(context.Background(), skeleton, cs, skeleton.UnfilledSlotIDs(), FillOptions{})
	require.NoError(t, err)

	assert.EqualValues(t, 1, attempts.Load(), "non-retryable failures burn no retry budget")
	assert.Len(t, result.Calls, 1)
}

func TestOrchestrator_CitationThresholdGate(t *testing.T) {
	skeleton, cs := tokyoSkeleton(t)

	// Threshold nothing can clear: meal slots still fill, but with the
	// generic uncited fallback whose provenance is the retrieval call.
	orch := NewOrchestrator(fullRegistry(t), WithSimilarityThreshold(0.99))
	result, err := orch.Fill(context.Background(), skeleton, cs)
	require.NoError(t, err)

	assert.Empty(t, result.Citations)
	sawMeal := false
	for _, day := range result.Skeleton.Days {
		for _, slot := range day.Slots {
			if slot.Category != CategoryMeal {
				continue
			}
			sawMeal = true
			require.True(t, slot.Filled())
			assert.Equal(t, "Local dining", slot.Item.Title)
			require.Len(t, slot.Item.Provenance, 1)
			assert.Equal(t, ProvenanceTool, slot.Item.Provenance[0].Kind)
			assert.True(t, strings.HasPrefix(slot.Item.Provenance[0].Ref, knowledge.ToolName+"#"))
		}
	}
	assert.True(t, sawMeal)
}

func TestOrchestrator_RunDeadlineAbandonsWorkEarly(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(&stubTool{
		name: "lodging",
		invoke: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			select {
			case <-time.After(5 * time.Second):
				return map[string]any{"lodging_options": []map[string]any{}}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}))

	skeleton := &PlanSkeleton{Days: []Day{{
		Date:        date("2026-10-15"),
		Destination: "Tokyo",
		Slots:       []Slot{{ID: types.NewID(), Category: CategoryLodging, TimeOfDay: Evening}},
	}}}
	cs := &ConstraintSet{Destinations: []string{"Tokyo"}}

	orch := NewOrchestrator(registry, WithBackoffInitial(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := orch.Refill(ctx, skeleton, cs, skeleton.UnfilledSlotIDs(), FillOptions{})
	require.NoError(t, err, "deadline produces a best-effort result, not an error")
	assert.Less(t, time.Since(start), 2*time.Second)

	_, slot, ok := result.Skeleton.Slot(skeleton.Days[0].Slots[0].ID)
	require.True(t, ok)
	assert.False(t, slot.Filled())
	assert.NotEmpty(t, slot.FailureReason)
}

func TestOrchestrator_RefillWithMaxPricePicksCheaper(t *testing.T) {
	registry := fullRegistry(t)
	skeleton, cs := tokyoSkeleton(t)
	orch := NewOrchestrator(registry, WithSimilarityThreshold(0.05))

	result, err := orch.Fill(context.Background(), skeleton, cs)
	require.NoError(t, err)

	var lodgingID types.ID
	var lodgingCost float64
	for _, item := range result.Skeleton.FilledItems() {
		if item.HasTag("lodging") {
			lodgingID = item.SlotID
			lodgingCost = item.Cost.Amount
			break
		}
	}
	require.NotEmpty(t, lodgingID)

	refilled, err := orch.Refill(context.Background(), result.Skeleton, cs,
		[]types.ID{lodgingID}, FillOptions{MaxPrice: lodgingCost + 1})
	require.NoError(t, err)

	_, slot, ok := refilled.Skeleton.Slot(lodgingID)
	require.True(t, ok)
	require.True(t, slot.Filled())
	assert.LessOrEqual(t, slot.Item.Cost.Amount, lodgingCost+1)
}
