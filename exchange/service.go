package exchange

import (
	"context"
	"fmt"

	currency "go-currency-exchange-mcp"
	"go-currency-exchange-mcp/rates"
)

// Service interface for converting an amount into one or more currencies
type Service interface {
	Convert(ctx context.Context, amount currency.Amount, from currency.Currency, to []currency.Currency) (currency.Conversion, error)
}

// service converts with the rates of a rates.Service
type service struct {
	// ratesService to lookup exchange rates
	ratesService rates.Service
}

// NewService constructs a valid Service
func NewService(s rates.Service) Service {
	return &service{
		ratesService: s,
	}
}

// Convert computes amount in every currency of to, in the order given.
// Each converted amount is rounded half-up to 2 decimal places by currency.Multiply.
func (s *service) Convert(ctx context.Context, amount currency.Amount, from currency.Currency, to []currency.Currency) (currency.Conversion, error) {
	quoted, err := s.ratesService.ExchangeRates(ctx, from)
	if err != nil {
		return currency.Conversion{}, fmt.Errorf("convert from [%v]: %w", from, err)
	}

	result := currency.Conversion{
		Amount: amount,
		From:   from,
		Lines:  make([]currency.Converted, 0, len(to)),
	}
	for _, c := range to {
		rate, ok := quoted[c]
		if !ok {
			return currency.Conversion{}, fmt.Errorf("convert to [%v]: %w", c, currency.ErrUnsupportedCurrency)
		}
		converted, err := currency.Multiply(amount, rate)
		if err != nil {
			return currency.Conversion{}, fmt.Errorf("convert to [%v]: %w", c, err)
		}
		result.Lines = append(result.Lines, currency.Converted{
			Currency: c,
			Rate:     rate,
			Amount:   converted,
		})
	}

	return result, nil
}
