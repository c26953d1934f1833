package currency

import (
	"errors"
	"fmt"
	"math"
)

// Table an immutable rate table for one base currency.
// A Table is safe for concurrent reads; accessors return copies.
type Table struct {
	base  Currency
	codes []Currency
	rates Rates
}

// NewTable constructs a valid Table. Quote order is preserved by Codes.
func NewTable(base Currency, quotes ...Quote) (*Table, error) {
	if base == "" {
		return nil, errors.New("rate table: empty base currency")
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("rate table [%v]: no quotes", base)
	}

	t := &Table{
		base:  base,
		codes: make([]Currency, 0, len(quotes)),
		rates: make(Rates, len(quotes)),
	}
	for _, q := range quotes {
		switch {
		case q.Currency == "":
			return nil, fmt.Errorf("rate table [%v]: empty currency code", base)
		case q.Currency == base:
			return nil, fmt.Errorf("rate table [%v]: quote for the base currency", base)
		case math.IsNaN(float64(q.Rate)) || math.IsInf(float64(q.Rate), 0) || q.Rate <= 0:
			return nil, fmt.Errorf("rate table [%v]: rate for %v must be a positive number, got %v", base, q.Currency, q.Rate)
		}
		if _, ok := t.rates[q.Currency]; ok {
			return nil, fmt.Errorf("rate table [%v]: duplicate currency %v", base, q.Currency)
		}
		t.codes = append(t.codes, q.Currency)
		t.rates[q.Currency] = q.Rate
	}
	return t, nil
}

// ReferenceTable returns the built-in CNY rate table.
func ReferenceTable() *Table {
	t, err := NewTable("CNY",
		Quote{"USD", 0.14},
		Quote{"EUR", 0.13},
		Quote{"JPY", 20.41},
		Quote{"GBP", 0.11},
		Quote{"HKD", 1.09},
		Quote{"KRW", 181.21},
		Quote{"SGD", 0.19},
		Quote{"AUD", 0.21},
		Quote{"CAD", 0.19},
		Quote{"CHF", 0.12},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Base the currency every rate is quoted against
func (t *Table) Base() Currency {
	return t.base
}

// Codes the quoted currencies in table order
func (t *Table) Codes() []Currency {
	codes := make([]Currency, len(t.codes))
	copy(codes, t.codes)
	return codes
}

// Rate looks up the rate of one currency
func (t *Table) Rate(c Currency) (Rate, bool) {
	r, ok := t.rates[c]
	return r, ok
}

// Rates a copy of all rates
func (t *Table) Rates() Rates {
	rates := make(Rates, len(t.rates))
	for k, v := range t.rates {
		rates[k] = v
	}
	return rates
}

// Quotes the table entries in table order
func (t *Table) Quotes() []Quote {
	quotes := make([]Quote, 0, len(t.codes))
	for _, c := range t.codes {
		quotes = append(quotes, Quote{Currency: c, Rate: t.rates[c]})
	}
	return quotes
}
