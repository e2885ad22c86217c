package planner

import (
	"strings"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// SlotCategory tags what kind of booking a slot holds.
type SlotCategory string

const (
	CategoryFlight   SlotCategory = "flight"
	CategoryLodging  SlotCategory = "lodging"
	CategoryMeal     SlotCategory = "meal"
	CategoryActivity SlotCategory = "activity"
	CategoryTransit  SlotCategory = "transit"
)

// TimeOfDay is a coarse ordering hint within a day. Slot order within a day
// is non-decreasing by this value.
type TimeOfDay int

const (
	Morning TimeOfDay = iota
	Midday
	Afternoon
	Evening
)

// String returns the lower-case name used in rendered itineraries.
func (t TimeOfDay) String() string {
	switch t {
	case Morning:
		return "morning"
	case Midday:
		return "midday"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	default:
		return "unknown"
	}
}

// ProvenanceKind distinguishes tool-derived from knowledge-derived claims.
type ProvenanceKind string

const (
	ProvenanceTool      ProvenanceKind = "tool"
	ProvenanceKnowledge ProvenanceKind = "knowledge"
)

// Provenance is one traceable origin backing an itinerary item: a recorded
// tool call ("tool_name#call_id") or a knowledge passage ID.
type Provenance struct {
	Kind ProvenanceKind `json:"kind"`
	Ref  string         `json:"ref"`
}

// ItineraryItem is a chosen option filling one slot. Owned by exactly one
// slot; replaced wholesale (never mutated) when a repair swaps the choice.
type ItineraryItem struct {
	SlotID     types.ID     `json:"slot_id"`
	Title      string       `json:"title"`
	Detail     string       `json:"detail,omitempty"`
	Cost       types.Money  `json:"cost"`
	Tags       []string     `json:"tags,omitempty"`
	Outdoor    bool         `json:"outdoor,omitempty"`
	Provenance []Provenance `json:"provenance"`
}

// HasTag reports whether the item carries tag (case-insensitive).
func (i *ItineraryItem) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Slot is a placeholder for one category of booking within a day. An
// unfilled slot after orchestration carries the failure reason instead of an
// item.
type Slot struct {
	ID            types.ID       `json:"id"`
	Category      SlotCategory   `json:"category"`
	TimeOfDay     TimeOfDay      `json:"time_of_day"`
	Item          *ItineraryItem `json:"item,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
}

// Filled reports whether the slot holds an item.
func (s *Slot) Filled() bool { return s.Item != nil }

// DayWeather is the forecast context attached to a day when available.
type DayWeather struct {
	WeatherCode       int     `json:"weather_code"`
	MaxTemp           float64 `json:"max_temp"`
	MinTemp           float64 `json:"min_temp"`
	PrecipProbability float64 `json:"precip_probability"`
}

// Day is one calendar day of the plan with its ordered slots.
type Day struct {
	Date        time.Time   `json:"date"`
	Destination string      `json:"destination,omitempty"`
	Weather     *DayWeather `json:"weather,omitempty"`
	Slots       []Slot      `json:"slots"`
}

// DateString returns the day's date as YYYY-MM-DD.
func (d *Day) DateString() string { return d.Date.Format(dateLayout) }

// PlanSkeleton is the day-by-day structure of the plan: generated with all
// slots unfilled, then filled by the orchestrator and reshaped by repair
// rounds.
type PlanSkeleton struct {
	Days []Day `json:"days"`
}

// Clone returns a deep copy. Repair rounds operate on clones so the
// best-seen plan can be kept when a round makes things worse.
func (p *PlanSkeleton) Clone() *PlanSkeleton {
	if p == nil {
		return nil
	}
	copied := &PlanSkeleton{Days: make([]Day, len(p.Days))}
	for i, day := range p.Days {
		d := day
		if day.Weather != nil {
			w := *day.Weather
			d.Weather = &w
		}
		d.Slots = make([]Slot, len(day.Slots))
		for j, slot := range day.Slots {
			s := slot
			if slot.Item != nil {
				item := *slot.Item
				item.Tags = append([]string(nil), slot.Item.Tags...)
				item.Provenance = append([]Provenance(nil), slot.Item.Provenance...)
				s.Item = &item
			}
			d.Slots[j] = s
		}
		copied.Days[i] = d
	}
	return copied
}

// Slot locates a slot by ID, returning pointers into the skeleton.
func (p *PlanSkeleton) Slot(id types.ID) (*Day, *Slot, bool) {
	for i := range p.Days {
		for j := range p.Days[i].Slots {
			if p.Days[i].Slots[j].ID == id {
				return &p.Days[i], &p.Days[i].Slots[j], true
			}
		}
	}
	return nil, nil, false
}

// UnfilledSlotIDs returns the IDs of all unfilled slots in day order.
func (p *PlanSkeleton) UnfilledSlotIDs() []types.ID {
	var ids []types.ID
	for i := range p.Days {
		for j := range p.Days[i].Slots {
			if !p.Days[i].Slots[j].Filled() {
				ids = append(ids, p.Days[i].Slots[j].ID)
			}
		}
	}
	return ids
}

// FilledItems returns all items in day order.
func (p *PlanSkeleton) FilledItems() []*ItineraryItem {
	var items []*ItineraryItem
	for i := range p.Days {
		for j := range p.Days[i].Slots {
			if item := p.Days[i].Slots[j].Item; item != nil {
				items = append(items, item)
			}
		}
	}
	return items
}

// TotalCost sums item costs. Items are priced in the planner's base currency.
func (p *PlanSkeleton) TotalCost(currency string) types.Money {
	total := types.NewMoney(0, currency)
	for _, item := range p.FilledItems() {
		total.Amount += item.Cost.Amount
	}
	return total
}

// CategoryFilled reports whether name matches a filled slot's category or a
// filled item's tag. Hard-preference coverage checks use this.
func (p *PlanSkeleton) CategoryFilled(name string) bool {
	for i := range p.Days {
		for j := range p.Days[i].Slots {
			slot := &p.Days[i].Slots[j]
			if !slot.Filled() {
				continue
			}
			if strings.EqualFold(string(slot.Category), name) || slot.Item.HasTag(name) {
				return true
			}
		}
	}
	return false
}
