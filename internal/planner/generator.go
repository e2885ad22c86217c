package planner

import (
	"sort"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// slotTemplate is one row of the category-inference table: which slots every
// day gets, in time-of-day order.
type slotTemplate struct {
	category  SlotCategory
	timeOfDay TimeOfDay
}

// dailyTemplate gives each day its baseline of at least three slots: meals,
// one activity, and lodging.
var dailyTemplate = []slotTemplate{
	{CategoryMeal, Morning},
	{CategoryActivity, Afternoon},
	{CategoryMeal, Evening},
	{CategoryLodging, Evening},
}

// Generator produces a PlanSkeleton from a ConstraintSet. Deterministic:
// given the same constraints and the same clock it always emits the same
// skeleton (modulo freshly minted slot IDs). No tool calls happen here.
type Generator struct {
	defaultTripDays int
	now             func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the clock used to anchor inferred date ranges.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a Generator. defaultTripDays is used when the
// constraints name no trip length at all.
func NewGenerator(defaultTripDays int, opts ...GeneratorOption) *Generator {
	if defaultTripDays < 1 {
		defaultTripDays = 3
	}
	g := &Generator{defaultTripDays: defaultTripDays, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate emits one Day per date in the constraint range with unfilled
// slots from the category-inference table. When the constraints carry no
// anchored range, the trip is anchored a week out from the clock and the
// resolved range is written back into the returned constraints flagged as
// inferred, so validation treats it as soft.
func (g *Generator) Generate(cs *ConstraintSet) (*PlanSkeleton, *ConstraintSet) {
	resolved := cs.Clone()
	if resolved == nil {
		resolved = &ConstraintSet{}
	}

	start, days := g.resolveRange(resolved)
	destinations := resolved.Destinations
	if len(destinations) == 0 {
		destinations = []string{""}
	}

	skeleton := &PlanSkeleton{Days: make([]Day, 0, days)}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		destination := destinations[destinationIndex(i, days, len(destinations))]

		day := Day{Date: date, Destination: destination}
		for _, tmpl := range dailyTemplate {
			day.Slots = append(day.Slots, Slot{
				ID:        types.NewID(),
				Category:  tmpl.category,
				TimeOfDay: tmpl.timeOfDay,
			})
		}

		// Arrival day gets a flight slot when an origin is named; the first
		// day in a new destination gets an inter-city transit slot.
		if i == 0 && resolved.Origin != "" {
			day.Slots = append(day.Slots, Slot{ID: types.NewID(), Category: CategoryFlight, TimeOfDay: Morning})
		} else if i > 0 && len(destinations) > 1 {
			prev := destinations[destinationIndex(i-1, days, len(destinations))]
			if prev != destination {
				day.Slots = append(day.Slots, Slot{ID: types.NewID(), Category: CategoryTransit, TimeOfDay: Morning})
			}
		}

		sort.SliceStable(day.Slots, func(a, b int) bool {
			return day.Slots[a].TimeOfDay < day.Slots[b].TimeOfDay
		})
		skeleton.Days = append(skeleton.Days, day)
	}

	return skeleton, resolved
}

// resolveRange returns the trip's start date and length, materializing an
// inferred range into the constraints when needed.
func (g *Generator) resolveRange(cs *ConstraintSet) (time.Time, int) {
	if cs.Dates != nil && cs.Dates.Anchored() {
		return cs.Dates.Start, cs.Dates.Days()
	}

	days := g.defaultTripDays
	inferred := true
	if cs.Dates != nil && cs.Dates.DurationDays > 0 {
		days = cs.Dates.DurationDays
		// Length was user-stated; only the anchor date is inferred.
		inferred = cs.Dates.Inferred
	}

	start := truncateToDay(g.now()).AddDate(0, 0, 7)
	cs.Dates = &DateRange{
		Start:    start,
		End:      start.AddDate(0, 0, days-1),
		Flexible: true,
		Inferred: inferred,
	}
	return start, days
}

// destinationIndex splits the trip's days evenly across destinations in
// order, earlier destinations getting the extra day on uneven splits.
func destinationIndex(day, totalDays, destinations int) int {
	if destinations <= 1 || totalDays <= 0 {
		return 0
	}
	idx := day * destinations / totalDays
	if idx >= destinations {
		idx = destinations - 1
	}
	return idx
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
