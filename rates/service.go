package rates

import (
	"context"
	"fmt"

	currency "go-currency-exchange-mcp"
)

// Service looks up the rates quoted against a base currency
type Service interface {
	ExchangeRates(ctx context.Context, base currency.Currency) (currency.Rates, error)
}

// service serves rates from an immutable table
type service struct {
	// table the injected rate table
	table *currency.Table
}

// NewService constructs a valid Service over table.
func NewService(table *currency.Table) Service {
	return &service{
		table: table,
	}
}

// ExchangeRates returns the rates of the table when base is the table's base currency.
// The returned map is a copy and safe to use concurrently.
func (s *service) ExchangeRates(_ context.Context, base currency.Currency) (currency.Rates, error) {
	if base != s.table.Base() {
		return nil, fmt.Errorf("base currency [%v]: %w", base, currency.ErrUnsupportedCurrency)
	}
	return s.table.Rates(), nil
}
