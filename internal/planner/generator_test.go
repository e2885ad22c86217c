package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(s string) func() time.Time {
	return func() time.Time { return date(s) }
}

func TestGenerator_OneDayPerDate(t *testing.T) {
	gen := NewGenerator(3)
	cs := &ConstraintSet{
		Dates:        &DateRange{Start: date("2026-10-15"), End: date("2026-10-19")},
		Destinations: []string{"Tokyo"},
	}

	skeleton, resolved := gen.Generate(cs)

	require.Len(t, skeleton.Days, 5)
	for i, day := range skeleton.Days {
		assert.Equal(t, date("2026-10-15").AddDate(0, 0, i), day.Date)
		assert.Equal(t, "Tokyo", day.Destination)
		assert.GreaterOrEqual(t, len(day.Slots), 3, "each day gets at least three slots")
	}
	assert.False(t, resolved.Dates.Inferred)
}

func TestGenerator_SlotOrderNonDecreasing(t *testing.T) {
	gen := NewGenerator(3)
	cs := &ConstraintSet{
		Dates:  &DateRange{Start: date("2026-10-15"), End: date("2026-10-16")},
		Origin: "SFO",
	}

	skeleton, _ := gen.Generate(cs)
	for _, day := range skeleton.Days {
		for i := 1; i < len(day.Slots); i++ {
			assert.LessOrEqual(t, day.Slots[i-1].TimeOfDay, day.Slots[i].TimeOfDay,
				"slots within a day must be ordered by time of day")
		}
	}
}

func TestGenerator_DefaultTripIsInferred(t *testing.T) {
	gen := NewGenerator(3, WithClock(fixedClock("2026-10-01")))

	skeleton, resolved := gen.Generate(&ConstraintSet{Destinations: []string{"Tokyo"}})

	require.Len(t, skeleton.Days, 3)
	require.NotNil(t, resolved.Dates)
	assert.True(t, resolved.Dates.Inferred, "invented range must be flagged soft-inferred")
	assert.Equal(t, date("2026-10-08"), resolved.Dates.Start, "anchored a week out")
}

func TestGenerator_DurationWithoutAnchor(t *testing.T) {
	gen := NewGenerator(3, WithClock(fixedClock("2026-10-01")))
	cs := &ConstraintSet{Dates: &DateRange{DurationDays: 5, Flexible: true, Inferred: true}}

	skeleton, resolved := gen.Generate(cs)

	assert.Len(t, skeleton.Days, 5, "stated duration wins over the default")
	assert.True(t, resolved.Dates.Inferred)
	assert.Equal(t, 5, resolved.Dates.Days())
}

func TestGenerator_FlightSlotOnArrivalDay(t *testing.T) {
	gen := NewGenerator(3)
	cs := &ConstraintSet{
		Dates:  &DateRange{Start: date("2026-10-15"), End: date("2026-10-16")},
		Origin: "SFO",
	}

	skeleton, _ := gen.Generate(cs)

	countFlights := func(day Day) int {
		n := 0
		for _, s := range day.Slots {
			if s.Category == CategoryFlight {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 1, countFlights(skeleton.Days[0]))
	assert.Equal(t, 0, countFlights(skeleton.Days[1]))
}

func TestGenerator_TransitBetweenDestinations(t *testing.T) {
	gen := NewGenerator(3)
	cs := &ConstraintSet{
		Dates:        &DateRange{Start: date("2026-10-15"), End: date("2026-10-18")},
		Destinations: []string{"Tokyo", "Kyoto"},
	}

	skeleton, _ := gen.Generate(cs)
	require.Len(t, skeleton.Days, 4)
	assert.Equal(t, "Tokyo", skeleton.Days[0].Destination)
	assert.Equal(t, "Kyoto", skeleton.Days[3].Destination)

	var transitDays []int
	for i, day := range skeleton.Days {
		for _, s := range day.Slots {
			if s.Category == CategoryTransit {
				transitDays = append(transitDays, i)
			}
		}
	}
	require.Len(t, transitDays, 1, "exactly one inter-city transit slot")
	assert.Equal(t, "Kyoto", skeleton.Days[transitDays[0]].Destination,
		"transit slot sits on the first day in the new destination")
}

func TestGenerator_Deterministic(t *testing.T) {
	gen := NewGenerator(3, WithClock(fixedClock("2026-10-01")))
	cs := &ConstraintSet{Destinations: []string{"Tokyo"}, Origin: "SFO"}

	a, _ := gen.Generate(cs)
	b, _ := gen.Generate(cs)

	require.Len(t, b.Days, len(a.Days))
	for i := range a.Days {
		assert.Equal(t, a.Days[i].Date, b.Days[i].Date)
		require.Len(t, b.Days[i].Slots, len(a.Days[i].Slots))
		for j := range a.Days[i].Slots {
			assert.Equal(t, a.Days[i].Slots[j].Category, b.Days[i].Slots[j].Category)
			assert.Equal(t, a.Days[i].Slots[j].TimeOfDay, b.Days[i].Slots[j].TimeOfDay)
		}
	}
}
