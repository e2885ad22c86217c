package builtins

import (
	"context"
	"strings"
)

// CurrencyInput are the arguments accepted by the currency rates adapter.
type CurrencyInput struct {
	BaseCurrency     string   `json:"base_currency,omitempty"`
	TargetCurrencies []string `json:"target_currencies"`
}

// CurrencyOutput is the currency rates adapter result payload.
type CurrencyOutput struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
}

// CurrencyTool retrieves exchange rates against a base currency.
type CurrencyTool struct {
	fixtures *Fixtures
}

// NewCurrencyTool creates a currency adapter over the given fixtures.
func NewCurrencyTool(fixtures *Fixtures) *CurrencyTool {
	return &CurrencyTool{fixtures: fixtures}
}

func (t *CurrencyTool) Name() string { return "currency_rates" }

func (t *CurrencyTool) Description() string {
	return "Retrieves currency exchange rates for target currencies against a base currency."
}

func (t *CurrencyTool) Tags() []string { return []string{"travel", "finance"} }

// Invoke returns a rate per requested target; an unknown target defaults to
// 1.0 so a missing rate never blocks budget arithmetic.
func (t *CurrencyTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var input CurrencyInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}

	base := strings.ToUpper(input.BaseCurrency)
	if base == "" {
		base = "USD"
	}

	var table map[string]float64
	for _, entry := range t.fixtures.Currency {
		if strings.EqualFold(entry.BaseCurrency, base) {
			table = entry.Rates
			break
		}
	}

	rates := make(map[string]float64, len(input.TargetCurrencies))
	for _, target := range input.TargetCurrencies {
		target = strings.ToUpper(target)
		if rate, ok := table[target]; ok {
			rates[target] = rate
		} else {
			rates[target] = 1.0
		}
	}

	return encodeResult(CurrencyOutput{BaseCurrency: base, Rates: rates})
}
