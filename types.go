package currency

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency a currency code
type Currency string

// Amount a monetary amount
type Amount float64

// Rate an exchange rate, units of a currency per one unit of the base currency
type Rate float64

// Rates maps currency codes to rates
type Rates map[Currency]Rate

// Quote a single entry of a rate table
type Quote struct {
	Currency Currency
	Rate     Rate
}

// Converted one converted line of a Conversion
type Converted struct {
	Currency Currency
	Rate     Rate
	Amount   Amount
}

// Conversion the result of converting an amount into one or more currencies.
// Lines are in the order the target currencies were requested.
type Conversion struct {
	Amount Amount
	From   Currency
	Lines  []Converted
}

var (
	// ErrUnsupportedCurrency is returned for currency codes missing from the rate table.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrUnrepresentable is returned when a converted amount is not a finite number.
	ErrUnrepresentable = errors.New("conversion result is not representable")
)

// Multiply converts amount with rate. The product is taken on the decimal
// values of both operands and rounded half away from zero to 2 places:
// 7.5 * 20.41 is 153.08.
func Multiply(amount Amount, rate Rate) (Amount, error) {
	if !finite(float64(amount)) || !finite(float64(rate)) {
		return 0, fmt.Errorf("%v * %v: %w", amount, rate, ErrUnrepresentable)
	}
	product := decimal.NewFromFloat(float64(amount)).
		Mul(decimal.NewFromFloat(float64(rate))).
		Round(2).
		InexactFloat64()
	if !finite(product) {
		return 0, fmt.Errorf("%v * %v: %w", amount, rate, ErrUnrepresentable)
	}
	return Amount(product), nil
}

// FormatAmount renders a to exactly 2 decimal places, rounding half away from zero.
func FormatAmount(a Amount) string {
	return decimal.NewFromFloat(float64(a)).StringFixed(2)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
