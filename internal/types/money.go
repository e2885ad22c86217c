package types

import (
	"fmt"
	"strings"
)

// Money represents an amount in a specific currency.
// Amounts are kept as float64 to match tool payloads (nightly rates, fares);
// all budget comparisons happen in a single currency after conversion.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// NewMoney creates a Money value with a normalized upper-case currency code.
func NewMoney(amount float64, currency string) Money {
	return Money{
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// IsZero reports whether the value carries no amount and no currency.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// Validate checks that the amount is non-negative and the currency, when
// present, is a three-letter code.
func (m Money) Validate() error {
	if m.Amount < 0 {
		return fmt.Errorf("amount cannot be negative: %f", m.Amount)
	}
	if m.Currency != "" && len(m.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter code: %q", m.Currency)
	}
	return nil
}

// Add returns the sum of two amounts. Both must share a currency; an empty
// currency on either side adopts the other's.
func (m Money) Add(other Money) (Money, error) {
	switch {
	case m.Currency == "":
		return Money{Amount: m.Amount + other.Amount, Currency: other.Currency}, nil
	case other.Currency == "" || m.Currency == other.Currency:
		return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
	default:
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
}

// Convert returns the amount converted with the given rate into target currency.
func (m Money) Convert(target string, rate float64) Money {
	return NewMoney(m.Amount*rate, target)
}

// String returns a formatted representation like "2000.00 USD".
func (m Money) String() string {
	if m.Currency == "" {
		return fmt.Sprintf("%.2f", m.Amount)
	}
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
