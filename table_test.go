package currency

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceTable(t *testing.T) {
	table := ReferenceTable()

	assert.Equal(t, Currency("CNY"), table.Base())
	assert.Equal(t,
		[]Currency{"USD", "EUR", "JPY", "GBP", "HKD", "KRW", "SGD", "AUD", "CAD", "CHF"},
		table.Codes())

	rate, ok := table.Rate("JPY")
	assert.True(t, ok)
	assert.Equal(t, Rate(20.41), rate)

	_, ok = table.Rate("XYZ")
	assert.False(t, ok)
}

func TestTable_AccessorsReturnCopies(t *testing.T) {
	table := ReferenceTable()

	codes := table.Codes()
	codes[0] = "XXX"
	rates := table.Rates()
	rates["USD"] = 99

	assert.Equal(t, Currency("USD"), table.Codes()[0])
	rate, _ := table.Rate("USD")
	assert.Equal(t, Rate(0.14), rate)
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		base   Currency
		quotes []Quote
	}{
		{"empty base", "", []Quote{{"USD", 1}}},
		{"no quotes", "CNY", nil},
		{"empty code", "CNY", []Quote{{"", 1}}},
		{"base quoted", "CNY", []Quote{{"CNY", 1}}},
		{"zero rate", "CNY", []Quote{{"USD", 0}}},
		{"negative rate", "CNY", []Quote{{"USD", -1}}},
		{"nan rate", "CNY", []Quote{{"USD", Rate(math.NaN())}}},
		{"inf rate", "CNY", []Quote{{"USD", Rate(math.Inf(1))}}},
		{"duplicate", "CNY", []Quote{{"USD", 1}, {"USD", 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.base, tt.quotes...)
			assert.Error(t, err)
		})
	}
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		amount Amount
		rate   Rate
		want   Amount
	}{
		{10, 2.5, 25},
		{100, 0.14, 14},
		{7.5, 20.41, 153.08},
		{11.5, 0.11, 1.27},
		{42.5, 0.19, 8.08},
		{42.125, 0.12, 5.06},
		{0.01, 0.11, 0},
	}
	for _, tt := range tests {
		got, err := Multiply(tt.amount, tt.rate)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Multiply(%v, %v)", tt.amount, tt.rate)
	}
}

func TestMultiply_Unrepresentable(t *testing.T) {
	_, err := Multiply(math.MaxFloat64, 181.21)
	assert.True(t, errors.Is(err, ErrUnrepresentable))

	_, err = Multiply(Amount(math.NaN()), 1)
	assert.True(t, errors.Is(err, ErrUnrepresentable))

	_, err = Multiply(1, Rate(math.Inf(1)))
	assert.True(t, errors.Is(err, ErrUnrepresentable))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{14.000000000000002, "14.00"},
		{2041, "2041.00"},
		{153.075, "153.08"},
		{1.265, "1.27"},
		{0.125, "0.13"},
		{0.124, "0.12"},
		{0.1, "0.10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in), "FormatAmount(%v)", tt.in)
	}
}
