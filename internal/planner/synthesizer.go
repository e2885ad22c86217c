package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Itinerary is the structured day-by-day output of a planning run.
type Itinerary struct {
	Days      []ItineraryDay `json:"days"`
	TotalCost types.Money    `json:"total_cost"`
}

// ItineraryDay is one rendered day.
type ItineraryDay struct {
	Date        string           `json:"date"`
	Destination string           `json:"destination,omitempty"`
	Entries     []ItineraryEntry `json:"entries"`
}

// ItineraryEntry is one rendered item, or a disclosed gap for a slot that
// could not be filled.
type ItineraryEntry struct {
	TimeOfDay string      `json:"time_of_day"`
	Category  string      `json:"category"`
	Title     string      `json:"title"`
	Detail    string      `json:"detail,omitempty"`
	Cost      types.Money `json:"cost"`
	Refs      []string    `json:"refs,omitempty"`
	Unfilled  bool        `json:"unfilled,omitempty"`
	Gap       string      `json:"gap,omitempty"`
}

// Synthesizer renders the final skeleton into a structured itinerary, a
// natural-language explanation, and the citation list. It enforces the
// provenance invariant: an item that cannot be traced to a recorded tool
// call or citation is a defect and fails the run.
type Synthesizer struct {
	client       *llm.Client
	baseCurrency string
	logger       *slog.Logger
}

// NewSynthesizer creates a Synthesizer. client may be nil, in which case the
// explanation is rendered deterministically without an LLM pass.
// baseCurrency is the currency item costs are priced in.
func NewSynthesizer(client *llm.Client, baseCurrency string, logger *slog.Logger) *Synthesizer {
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{client: client, baseCurrency: baseCurrency, logger: logger}
}

// Synthesize builds the itinerary and explanation from the final skeleton.
// calls and citations are the session's full records, used to resolve every
// item's provenance; an unresolvable item returns
// INTERNAL_INVARIANT_VIOLATION.
func (s *Synthesizer) Synthesize(ctx context.Context, skeleton *PlanSkeleton, cs *ConstraintSet, calls []tool.Call, citations []knowledge.Citation) (*Itinerary, string, error) {
	if err := s.checkProvenance(skeleton, calls, citations); err != nil {
		return nil, "", err
	}

	itinerary := s.render(skeleton, cs)
	explanation := s.explain(ctx, itinerary, cs)
	return itinerary, explanation, nil
}

// checkProvenance verifies every filled item resolves to at least one
// recorded tool call or accepted citation.
func (s *Synthesizer) checkProvenance(skeleton *PlanSkeleton, calls []tool.Call, citations []knowledge.Citation) error {
	callRefs := make(map[string]bool, len(calls))
	for _, call := range calls {
		callRefs[fmt.Sprintf("%s#%s", call.Tool, call.ID)] = true
	}
	citationRefs := make(map[string]bool, len(citations))
	for _, c := range citations {
		citationRefs[c.Ref] = true
	}

	for _, item := range skeleton.FilledItems() {
		if len(item.Provenance) == 0 {
			return types.NewError(types.INTERNAL_INVARIANT_VIOLATION,
				fmt.Sprintf("item %q has no provenance", item.Title))
		}
		resolved := false
		for _, p := range item.Provenance {
			switch p.Kind {
			case ProvenanceTool:
				if callRefs[p.Ref] {
					resolved = true
				}
			case ProvenanceKnowledge:
				if citationRefs[p.Ref] {
					resolved = true
				}
			}
		}
		if !resolved {
			return types.NewError(types.INTERNAL_INVARIANT_VIOLATION,
				fmt.Sprintf("item %q provenance resolves to no recorded call or citation", item.Title))
		}
	}
	return nil
}

func (s *Synthesizer) render(skeleton *PlanSkeleton, cs *ConstraintSet) *Itinerary {
	itinerary := &Itinerary{TotalCost: skeleton.TotalCost(s.baseCurrency)}
	for i := range skeleton.Days {
		day := &skeleton.Days[i]
		rendered := ItineraryDay{Date: day.DateString(), Destination: day.Destination}
		for j := range day.Slots {
			slot := &day.Slots[j]
			entry := ItineraryEntry{
				TimeOfDay: slot.TimeOfDay.String(),
				Category:  string(slot.Category),
			}
			if slot.Filled() {
				entry.Title = slot.Item.Title
				entry.Detail = slot.Item.Detail
				entry.Cost = slot.Item.Cost
				for _, p := range slot.Item.Provenance {
					entry.Refs = append(entry.Refs, p.Ref)
				}
			} else {
				entry.Unfilled = true
				entry.Title = fmt.Sprintf("open %s slot", slot.Category)
				entry.Gap = slot.FailureReason
			}
			rendered.Entries = append(rendered.Entries, entry)
		}
		itinerary.Days = append(itinerary.Days, rendered)
	}
	return itinerary
}

const explanationSystemPrompt = `You are a travel advisor summarizing a finished itinerary.
Write a short, friendly explanation (3-6 sentences) of the plan you are given:
highlight how it meets the traveler's stated constraints and call out any
gaps honestly. Do not invent items that are not in the plan.`

// explain produces the natural-language summary. The LLM pass is best effort;
// on any failure a deterministic rendering stands in so a transient LLM
// outage never fails an otherwise complete run.
func (s *Synthesizer) explain(ctx context.Context, itinerary *Itinerary, cs *ConstraintSet) string {
	fallback := renderMarkdown(itinerary, cs)
	if s.client == nil {
		return fallback
	}

	resp, err := s.client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: explanationSystemPrompt,
		Messages:     []llm.Message{llm.NewUserMessage(fallback)},
		Temperature:  0.4,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "explanation generation failed, using deterministic rendering", "error", err)
		return fallback
	}
	if strings.TrimSpace(resp.Content) == "" {
		return fallback
	}
	return resp.Content
}

// renderMarkdown is the deterministic explanation: a compact markdown digest
// of the itinerary.
func renderMarkdown(itinerary *Itinerary, cs *ConstraintSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trip plan (%d days, total %s)\n", len(itinerary.Days), itinerary.TotalCost.String())
	if cs.Budget != nil {
		fmt.Fprintf(&b, "Budget: %s\n", cs.Budget.String())
	}
	for _, day := range itinerary.Days {
		fmt.Fprintf(&b, "\n## %s", day.Date)
		if day.Destination != "" {
			fmt.Fprintf(&b, " - %s", day.Destination)
		}
		b.WriteString("\n")
		for _, entry := range day.Entries {
			if entry.Unfilled {
				fmt.Fprintf(&b, "- %s (%s): unresolved", entry.Title, entry.TimeOfDay)
				if entry.Gap != "" {
					fmt.Fprintf(&b, " (%s)", entry.Gap)
				}
				b.WriteString("\n")
				continue
			}
			fmt.Fprintf(&b, "- %s (%s): %s", entry.Title, entry.TimeOfDay, entry.Cost.String())
			if entry.Detail != "" {
				fmt.Fprintf(&b, " - %s", entry.Detail)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
