package exchange

import (
	"strings"

	currency "go-currency-exchange-mcp"
)

// Format renders a conversion as text: a summary line followed by one
// "<amount> <code>" line per converted currency, all to 2 decimal places.
//
//	100.00 CNY equals:
//	14.00 USD
//	2041.00 JPY
func Format(c currency.Conversion) string {
	var b strings.Builder
	b.WriteString(currency.FormatAmount(c.Amount))
	b.WriteByte(' ')
	b.WriteString(string(c.From))
	b.WriteString(" equals:")
	for _, line := range c.Lines {
		b.WriteByte('\n')
		b.WriteString(currency.FormatAmount(line.Amount))
		b.WriteByte(' ')
		b.WriteString(string(line.Currency))
	}
	return b.String()
}
