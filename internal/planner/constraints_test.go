package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name  string
		r     DateRange
		wants int
	}{
		{"single day", DateRange{Start: date("2026-10-15"), End: date("2026-10-15")}, 1},
		{"five days", DateRange{Start: date("2026-10-15"), End: date("2026-10-19")}, 5},
		{"inverted", DateRange{Start: date("2026-10-19"), End: date("2026-10-15")}, 0},
		{"duration only", DateRange{DurationDays: 4}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.r.Days())
		})
	}
}

func TestConstraintSet_Validate(t *testing.T) {
	budget := types.NewMoney(2000, "USD")
	valid := &ConstraintSet{
		Budget: &budget,
		Dates:  &DateRange{Start: date("2026-10-15"), End: date("2026-10-19")},
	}
	require.NoError(t, valid.Validate())

	inverted := &ConstraintSet{
		Dates: &DateRange{Start: date("2026-10-19"), End: date("2026-10-15")},
	}
	assert.Error(t, inverted.Validate())

	negative := types.NewMoney(-1, "USD")
	assert.Error(t, (&ConstraintSet{Budget: &negative}).Validate())
}

func TestConstraintSet_MergeOverwritesMentionedOnly(t *testing.T) {
	budget := types.NewMoney(2000, "USD")
	prior := &ConstraintSet{
		Budget:       &budget,
		Destinations: []string{"Tokyo"},
		SoftPrefs:    []SoftPreference{{Tag: "culture", Weight: 1}},
		Version:      1,
	}

	newBudget := types.NewMoney(1500, "USD")
	merged := prior.Merge(constraintDelta{Budget: &newBudget})

	assert.Equal(t, 1500.0, merged.Budget.Amount)
	assert.Equal(t, []string{"Tokyo"}, merged.Destinations, "unmentioned fields persist")
	assert.Equal(t, []SoftPreference{{Tag: "culture", Weight: 1}}, merged.SoftPrefs)
	assert.Equal(t, 2, merged.Version)

	// The prior set is untouched.
	assert.Equal(t, 2000.0, prior.Budget.Amount)
	assert.Equal(t, 1, prior.Version)
}

func TestConstraintSet_MergeFromNil(t *testing.T) {
	var prior *ConstraintSet
	merged := prior.Merge(constraintDelta{Destinations: []string{"Kyoto"}, Travelers: 2})

	assert.Equal(t, []string{"Kyoto"}, merged.Destinations)
	assert.Equal(t, 2, merged.Travelers)
	assert.Equal(t, 1, merged.Version)
}

func TestConstraintSet_HasHardPref(t *testing.T) {
	cs := &ConstraintSet{HardPrefs: []string{"lodging", "Culture"}}
	assert.True(t, cs.HasHardPref("lodging"))
	assert.True(t, cs.HasHardPref("culture"))
	assert.False(t, cs.HasHardPref("food"))
}
