package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Extractor turns a free-form travel request, plus any prior constraints from
// the same thread, into a structured ConstraintSet. The LLM call is treated
// as a non-deterministic tool: retried for transport failure only, never for
// divergence, and its output is validated before use.
type Extractor struct {
	client       *llm.Client
	baseCurrency string
	logger       *slog.Logger
}

// NewExtractor creates an Extractor. Currency-less amounts default to
// baseCurrency.
func NewExtractor(client *llm.Client, baseCurrency string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, baseCurrency: strings.ToUpper(baseCurrency), logger: logger}
}

const extractionSystemPrompt = `You extract structured travel constraints from user requests.
Respond with a single JSON object and nothing else:
{
  "ambiguous": false,
  "ambiguity_reason": "",
  "budget": {"amount": 2000, "currency": "USD"},
  "start_date": "2026-10-15",
  "end_date": "2026-10-19",
  "duration_days": 5,
  "origin": "SFO",
  "destinations": ["Tokyo"],
  "travelers": 2,
  "hard_preferences": ["lodging"],
  "soft_preferences": [{"tag": "culture", "weight": 0.8}],
  "exclusions": []
}
Rules:
- Include ONLY fields the request explicitly mentions; omit everything else.
- Omit "currency" if the user gave a bare amount.
- Use "duration_days" when the user states a length without dates.
- Set "ambiguous" to true with a reason when two mutually exclusive readings
  are equally likely (for example "next week" with no anchor date). Never
  guess silently.`

// extractionResponse is the JSON shape the model returns. Pointer and slice
// fields distinguish "not mentioned" from explicit zero values.
type extractionResponse struct {
	Ambiguous       bool   `json:"ambiguous"`
	AmbiguityReason string `json:"ambiguity_reason"`

	Budget *struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"budget"`

	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationDays int    `json:"duration_days"`

	Origin          string           `json:"origin"`
	Destinations    []string         `json:"destinations"`
	Travelers       int              `json:"travelers"`
	HardPreferences []string         `json:"hard_preferences"`
	SoftPreferences []SoftPreference `json:"soft_preferences"`
	Exclusions      []string         `json:"exclusions"`
}

// Extract applies the request text as a delta over prior. A nil prior starts
// from an empty set. Returns EXTRACTION_AMBIGUOUS when the model flags two
// equally likely readings; the caller should re-prompt the user rather than
// guess.
func (e *Extractor) Extract(ctx context.Context, text string, prior *ConstraintSet) (*ConstraintSet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.NewError(types.EXTRACTION_AMBIGUOUS, "request text is empty")
	}

	req := llm.CompletionRequest{
		SystemPrompt: extractionSystemPrompt,
		Messages:     []llm.Message{llm.NewUserMessage(e.buildPrompt(text, prior))},
		Temperature:  0,
	}

	var resp extractionResponse
	if err := e.client.CompleteJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	if resp.Ambiguous {
		reason := resp.AmbiguityReason
		if reason == "" {
			reason = "request has multiple equally likely readings"
		}
		return nil, types.NewError(types.EXTRACTION_AMBIGUOUS, reason)
	}

	delta, err := e.buildDelta(resp)
	if err != nil {
		return nil, err
	}

	merged := prior.Merge(delta)
	if err := merged.Validate(); err != nil {
		return nil, types.WrapError(types.EXTRACTION_AMBIGUOUS,
			"extracted constraints are inconsistent", err)
	}

	e.logger.DebugContext(ctx, "extracted constraints",
		"version", merged.Version,
		"destinations", merged.Destinations,
		"has_budget", merged.Budget != nil)
	return merged, nil
}

func (e *Extractor) buildPrompt(text string, prior *ConstraintSet) string {
	var b strings.Builder
	if prior != nil && prior.Version > 0 {
		b.WriteString("Current constraints from earlier in this conversation (unmentioned fields persist):\n")
		if data, err := json.Marshal(prior); err == nil {
			b.Write(data)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Request: ")
	b.WriteString(text)
	return b.String()
}

func (e *Extractor) buildDelta(resp extractionResponse) (constraintDelta, error) {
	var delta constraintDelta

	if resp.Budget != nil {
		currency := resp.Budget.Currency
		if currency == "" {
			currency = e.baseCurrency
		}
		budget := types.NewMoney(resp.Budget.Amount, currency)
		delta.Budget = &budget
	}

	switch {
	case resp.StartDate != "" && resp.EndDate != "":
		start, err := time.Parse(dateLayout, resp.StartDate)
		if err != nil {
			return delta, types.NewError(types.EXTRACTION_AMBIGUOUS,
				fmt.Sprintf("unparseable start date %q", resp.StartDate))
		}
		end, err := time.Parse(dateLayout, resp.EndDate)
		if err != nil {
			return delta, types.NewError(types.EXTRACTION_AMBIGUOUS,
				fmt.Sprintf("unparseable end date %q", resp.EndDate))
		}
		delta.Dates = &DateRange{Start: start, End: end}
	case resp.StartDate != "" && resp.DurationDays > 0:
		start, err := time.Parse(dateLayout, resp.StartDate)
		if err != nil {
			return delta, types.NewError(types.EXTRACTION_AMBIGUOUS,
				fmt.Sprintf("unparseable start date %q", resp.StartDate))
		}
		delta.Dates = &DateRange{Start: start, End: start.AddDate(0, 0, resp.DurationDays-1)}
	case resp.DurationDays > 0:
		// Duration without an anchor: flexible range resolved by the
		// generator against its clock, flagged inferred.
		delta.Dates = &DateRange{Flexible: true, Inferred: true, DurationDays: resp.DurationDays}
	}

	delta.Origin = resp.Origin
	delta.Destinations = resp.Destinations
	delta.Travelers = resp.Travelers
	delta.HardPrefs = resp.HardPreferences
	delta.SoftPrefs = resp.SoftPreferences
	delta.Exclusions = resp.Exclusions
	return delta, nil
}
