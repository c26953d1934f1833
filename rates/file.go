package rates

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	currency "go-currency-exchange-mcp"
)

// tableFile is the TOML layout of a rate table file:
//
//	base = "CNY"
//
//	[[rates]]
//	currency = "USD"
//	rate = 0.14
type tableFile struct {
	Base  string `toml:"base"`
	Rates []struct {
		Currency string  `toml:"currency"`
		Rate     float64 `toml:"rate"`
	} `toml:"rates"`
}

// LoadFile reads a rate table from a TOML file. The file is read once; the
// resulting table never changes.
func LoadFile(path string) (*currency.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rate table load failed (%s): %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a TOML rate table.
func Parse(data []byte) (*currency.Table, error) {
	var raw tableFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rate table parse failed: %w", err)
	}

	quotes := make([]currency.Quote, 0, len(raw.Rates))
	for _, r := range raw.Rates {
		quotes = append(quotes, currency.Quote{
			Currency: currency.Currency(r.Currency),
			Rate:     currency.Rate(r.Rate),
		})
	}
	return currency.NewTable(currency.Currency(raw.Base), quotes...)
}
