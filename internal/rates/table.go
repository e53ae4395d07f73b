// Package rates provides a fixed exchange-rate table implementing the
// domain RateSource contract. The table is built once at process start and
// never mutated; a live feed can be substituted behind the same interface.
package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atlasbank/ledger-service/internal/domain"
)

// Table is an immutable rate table keyed by ordered currency pairs.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewFixedTable builds the default table. Rates are directional: EUR->USD
// and USD->EUR are independent entries, both listed explicitly.
func NewFixedTable() *Table {
	entries := map[string]string{
		"EUR_USD": "1.08", "EUR_GBP": "0.86", "EUR_CHF": "0.95", "EUR_PLN": "4.23",
		"USD_EUR": "0.93", "USD_GBP": "0.80", "USD_CHF": "0.88", "USD_PLN": "3.92",
		"GBP_EUR": "1.16", "GBP_USD": "1.25", "GBP_CHF": "1.10", "GBP_PLN": "4.91",
		"CHF_EUR": "1.05", "CHF_USD": "1.14", "CHF_GBP": "0.91", "CHF_PLN": "4.45",
		"PLN_EUR": "0.24", "PLN_USD": "0.26", "PLN_GBP": "0.20", "PLN_CHF": "0.22",
	}
	rates := make(map[string]decimal.Decimal, len(entries))
	for pair, rate := range entries {
		rates[pair] = decimal.RequireFromString(rate)
	}
	return &Table{rates: rates}
}

// NewTable builds a table from explicit pairs, for tests and alternative
// deployments.
func NewTable(pairs map[string]decimal.Decimal) *Table {
	rates := make(map[string]decimal.Decimal, len(pairs))
	for pair, rate := range pairs {
		rates[pair] = rate
	}
	return &Table{rates: rates}
}

// Rate returns the rate for the ordered pair, or ErrUnknownCurrencyPair.
func (t *Table) Rate(from, to domain.Currency) (decimal.Decimal, error) {
	rate, ok := t.rates[string(from)+"_"+string(to)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%s->%s: %w", from, to, domain.ErrUnknownCurrencyPair)
	}
	return rate, nil
}
