package exchange

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	currency "go-currency-exchange-mcp"
	"go-currency-exchange-mcp/rates"
)

type mock struct {
	exchangeRates map[currency.Currency]currency.Rates
}

func (m *mock) ExchangeRates(_ context.Context, c currency.Currency) (currency.Rates, error) {
	r, ok := m.exchangeRates[c]
	if !ok {
		return nil, currency.ErrUnsupportedCurrency
	}
	return r, nil
}

func TestService_Convert(t *testing.T) {
	allRates := map[currency.Currency]currency.Rates{
		"USD": {"FOO": 2.0, "BAR": 3.0},
		"GBP": {"FOO": 4.0, "BAR": 5.0, "BIG": math.MaxFloat64},
	}

	service := &service{
		ratesService: &mock{exchangeRates: allRates},
	}

	type args struct {
		amount currency.Amount
		from   currency.Currency
		to     []currency.Currency
	}
	tests := []struct {
		name    string
		args    args
		want    currency.Conversion
		wantErr error
	}{
		{
			"usd -> foo",
			args{10.0, "USD", []currency.Currency{"FOO"}},
			currency.Conversion{Amount: 10, From: "USD", Lines: []currency.Converted{{Currency: "FOO", Rate: 2, Amount: 20}}},
			nil,
		},
		{
			"gbp -> bar, foo keeps order",
			args{10.0, "GBP", []currency.Currency{"BAR", "FOO"}},
			currency.Conversion{Amount: 10, From: "GBP", Lines: []currency.Converted{
				{Currency: "BAR", Rate: 5, Amount: 50},
				{Currency: "FOO", Rate: 4, Amount: 40},
			}},
			nil,
		},
		{
			"duplicates are kept",
			args{1.5, "USD", []currency.Currency{"FOO", "FOO"}},
			currency.Conversion{Amount: 1.5, From: "USD", Lines: []currency.Converted{
				{Currency: "FOO", Rate: 2, Amount: 3},
				{Currency: "FOO", Rate: 2, Amount: 3},
			}},
			nil,
		},
		{
			"gbp -> xyz",
			args{10.0, "GBP", []currency.Currency{"XYZ"}},
			currency.Conversion{},
			currency.ErrUnsupportedCurrency,
		},
		{
			"abc -> foo",
			args{10.0, "ABC", []currency.Currency{"FOO"}},
			currency.Conversion{},
			currency.ErrUnsupportedCurrency,
		},
		{
			"overflow",
			args{math.MaxFloat64, "GBP", []currency.Currency{"BIG"}},
			currency.Conversion{},
			currency.ErrUnrepresentable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), tt.args.amount, tt.args.from, tt.args.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Convert() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_ConvertReferenceTable(t *testing.T) {
	s := NewService(rates.NewService(currency.ReferenceTable()))

	tests := []struct {
		amount currency.Amount
		to     currency.Currency
		want   string
	}{
		{7.5, "USD", "1.05"},
		{7.5, "EUR", "0.98"},
		{7.5, "JPY", "153.08"},
		{7.5, "GBP", "0.83"},
		{7.5, "HKD", "8.18"},
		{7.5, "KRW", "1359.08"},
		{7.5, "SGD", "1.43"},
		{7.5, "AUD", "1.58"},
		{7.5, "CAD", "1.43"},
		{7.5, "CHF", "0.90"},
		{11.5, "GBP", "1.27"},
		{42.5, "SGD", "8.08"},
		{100, "KRW", "18121.00"},
		{0.01, "USD", "0.00"},
	}
	for _, tt := range tests {
		c, err := s.Convert(context.Background(), tt.amount, "CNY", []currency.Currency{tt.to})
		require.NoError(t, err)
		require.Len(t, c.Lines, 1)
		assert.Equal(t, tt.want, currency.FormatAmount(c.Lines[0].Amount), "%v CNY -> %v", tt.amount, tt.to)
	}
}

func TestFormat(t *testing.T) {
	s := NewService(rates.NewService(currency.ReferenceTable()))

	c, err := s.Convert(context.Background(), 100, "CNY", []currency.Currency{"USD", "JPY"})
	require.NoError(t, err)

	assert.Equal(t, "100.00 CNY equals:\n14.00 USD\n2041.00 JPY", Format(c))

	c, err = s.Convert(context.Background(), 7.5, "CNY", []currency.Currency{"JPY", "GBP"})
	require.NoError(t, err)
	assert.Equal(t, "7.50 CNY equals:\n153.08 JPY\n0.83 GBP", Format(c))

	c, err = s.Convert(context.Background(), 11.5, "CNY", []currency.Currency{"GBP"})
	require.NoError(t, err)
	assert.Equal(t, "11.50 CNY equals:\n1.27 GBP", Format(c))
}

func TestFormat_Idempotent(t *testing.T) {
	s := NewService(rates.NewService(currency.ReferenceTable()))
	to := []currency.Currency{"KRW", "EUR", "GBP"}

	first, err := s.Convert(context.Background(), 42.125, "CNY", to)
	require.NoError(t, err)
	second, err := s.Convert(context.Background(), 42.125, "CNY", to)
	require.NoError(t, err)

	assert.Equal(t, Format(first), Format(second))
	assert.Equal(t, "42.13 CNY equals:\n7633.47 KRW\n5.48 EUR\n4.63 GBP", Format(first))
}
