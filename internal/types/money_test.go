package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_NormalizesCurrency(t *testing.T) {
	m := NewMoney(2000, " usd ")
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, 2000.0, m.Amount)
}

func TestMoney_Validate(t *testing.T) {
	tests := []struct {
		name    string
		money   Money
		wantErr bool
	}{
		{name: "valid", money: NewMoney(150, "JPY")},
		{name: "zero amount allowed", money: NewMoney(0, "USD")},
		{name: "no currency allowed", money: Money{Amount: 10}},
		{name: "negative amount", money: Money{Amount: -1, Currency: "USD"}, wantErr: true},
		{name: "bad currency code", money: Money{Amount: 1, Currency: "DOLLARS"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.money.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMoney_Add(t *testing.T) {
	sum, err := NewMoney(120, "USD").Add(NewMoney(80, "USD"))
	require.NoError(t, err)
	assert.Equal(t, NewMoney(200, "USD"), sum)

	// An untagged amount adopts the other side's currency.
	sum, err = Money{Amount: 50}.Add(NewMoney(25, "USD"))
	require.NoError(t, err)
	assert.Equal(t, NewMoney(75, "USD"), sum)

	_, err = NewMoney(1, "USD").Add(NewMoney(1, "JPY"))
	assert.Error(t, err)
}

func TestMoney_Convert(t *testing.T) {
	jpy := NewMoney(100, "USD").Convert("JPY", 150.0)
	assert.Equal(t, NewMoney(15000, "JPY"), jpy)
}
