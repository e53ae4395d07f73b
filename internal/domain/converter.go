package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateSource supplies exchange rates between ordered currency pairs.
// Implementations may back this with a static table or a live feed.
type RateSource interface {
	// Rate returns the conversion rate from one currency to another.
	// Returns an error wrapping ErrUnknownCurrencyPair when the ordered pair
	// has no rate defined.
	Rate(from, to Currency) (decimal.Decimal, error)
}

// Converter converts amounts between currencies with deterministic rounding.
type Converter struct {
	rates RateSource
}

// NewConverter creates a Converter on top of a rate source.
func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Rate returns the conversion rate for the ordered pair. The identity rate
// is 1 and is answered without consulting the rate source.
func (c *Converter) Rate(from, to Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	rate, err := c.rates.Rate(from, to)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate %s->%s: %w", from, to, err)
	}
	return rate, nil
}

// Convert converts a Money value into the target currency. The result is
// rounded half-up to MoneyScale fractional digits; conversion is therefore
// lossy and round-trips are not expected to reproduce the original amount.
// Identity conversion returns the amount exactly, unrounded.
func (c *Converter) Convert(m Money, to Currency) (Money, error) {
	if m.Currency == to {
		return m, nil
	}
	rate, err := c.Rate(m.Currency, to)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Mul(rate).Round(MoneyScale), Currency: to}, nil
}

// ConversionNeeded reports whether a value movement between the two
// currencies requires conversion.
func ConversionNeeded(from, to Currency) bool {
	return from != to
}
