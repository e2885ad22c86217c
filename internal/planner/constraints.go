package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

const dateLayout = "2006-01-02"

// DateRange is the trip window. Inferred marks a range the planner invented
// (default trip length) rather than one the user stated; validation treats
// inferred ranges as soft.
type DateRange struct {
	Start    time.Time `json:"start,omitempty"`
	End      time.Time `json:"end,omitempty"`
	Flexible bool      `json:"flexible,omitempty"`
	Inferred bool      `json:"inferred,omitempty"`

	// DurationDays carries a stated trip length when no anchor date was
	// given; the generator resolves it against its clock.
	DurationDays int `json:"duration_days,omitempty"`
}

// Days returns the number of calendar days covered, inclusive of both bounds.
func (r DateRange) Days() int {
	if r.Start.IsZero() || r.End.IsZero() {
		return r.DurationDays
	}
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Anchored reports whether both bounds are concrete dates.
func (r DateRange) Anchored() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// SoftPreference is a weighted tag the plan should lean toward but never
// fails on.
type SoftPreference struct {
	Tag    string  `json:"tag"`
	Weight float64 `json:"weight"`
}

// ConstraintSet is the structured form of the user's request. Refinements
// produce a new set via Merge; Version increments on every change so session
// state records which constraints produced which plan.
type ConstraintSet struct {
	Budget       *types.Money     `json:"budget,omitempty"`
	Dates        *DateRange       `json:"dates,omitempty"`
	Origin       string           `json:"origin,omitempty"`
	Destinations []string         `json:"destinations,omitempty"`
	Travelers    int              `json:"travelers,omitempty"`
	HardPrefs    []string         `json:"hard_prefs,omitempty"`
	SoftPrefs    []SoftPreference `json:"soft_prefs,omitempty"`
	Exclusions   []string         `json:"exclusions,omitempty"`
	Version      int              `json:"version"`
}

// Validate checks the cross-field invariants: a bounded date range must not
// be inverted and a budget must be non-negative.
func (c *ConstraintSet) Validate() error {
	if c.Dates != nil && !c.Dates.Start.IsZero() && !c.Dates.End.IsZero() && c.Dates.End.Before(c.Dates.Start) {
		return fmt.Errorf("date range start %s is after end %s",
			c.Dates.Start.Format(dateLayout), c.Dates.End.Format(dateLayout))
	}
	if c.Budget != nil {
		if err := c.Budget.Validate(); err != nil {
			return fmt.Errorf("invalid budget: %w", err)
		}
	}
	if c.Travelers < 0 {
		return fmt.Errorf("traveler count cannot be negative: %d", c.Travelers)
	}
	return nil
}

// Clone returns a deep copy.
func (c *ConstraintSet) Clone() *ConstraintSet {
	if c == nil {
		return nil
	}
	copied := *c
	if c.Budget != nil {
		b := *c.Budget
		copied.Budget = &b
	}
	if c.Dates != nil {
		d := *c.Dates
		copied.Dates = &d
	}
	copied.Destinations = append([]string(nil), c.Destinations...)
	copied.HardPrefs = append([]string(nil), c.HardPrefs...)
	copied.SoftPrefs = append([]SoftPreference(nil), c.SoftPrefs...)
	copied.Exclusions = append([]string(nil), c.Exclusions...)
	return &copied
}

// constraintDelta is the partial update extracted from one request. Nil or
// empty fields mean "not mentioned" and leave the prior value in place.
type constraintDelta struct {
	Budget       *types.Money
	Dates        *DateRange
	Origin       string
	Destinations []string
	Travelers    int
	HardPrefs    []string
	SoftPrefs    []SoftPreference
	Exclusions   []string
}

// Merge applies a delta on top of the receiver: explicitly mentioned fields
// overwrite, unmentioned fields persist. The result is a new set with the
// version bumped; the receiver is never mutated.
func (c *ConstraintSet) Merge(delta constraintDelta) *ConstraintSet {
	merged := c.Clone()
	if merged == nil {
		merged = &ConstraintSet{}
	}

	if delta.Budget != nil {
		b := *delta.Budget
		merged.Budget = &b
	}
	if delta.Dates != nil {
		d := *delta.Dates
		merged.Dates = &d
	}
	if delta.Origin != "" {
		merged.Origin = delta.Origin
	}
	if len(delta.Destinations) > 0 {
		merged.Destinations = append([]string(nil), delta.Destinations...)
	}
	if delta.Travelers > 0 {
		merged.Travelers = delta.Travelers
	}
	if len(delta.HardPrefs) > 0 {
		merged.HardPrefs = append([]string(nil), delta.HardPrefs...)
	}
	if len(delta.SoftPrefs) > 0 {
		merged.SoftPrefs = append([]SoftPreference(nil), delta.SoftPrefs...)
	}
	if len(delta.Exclusions) > 0 {
		merged.Exclusions = append([]string(nil), delta.Exclusions...)
	}

	merged.Version++
	return merged
}

// HasHardPref reports whether name is a must-include category or tag.
func (c *ConstraintSet) HasHardPref(name string) bool {
	for _, p := range c.HardPrefs {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// SoftPrefTags returns the soft preference tags in declaration order.
func (c *ConstraintSet) SoftPrefTags() []string {
	tags := make([]string, 0, len(c.SoftPrefs))
	for _, p := range c.SoftPrefs {
		tags = append(tags, p.Tag)
	}
	return tags
}

// PrimaryDestination returns the first destination, or empty.
func (c *ConstraintSet) PrimaryDestination() string {
	if len(c.Destinations) == 0 {
		return ""
	}
	return c.Destinations[0]
}
