package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
	PLN Currency = "PLN"
)

// ReferenceCurrency is the common currency used when amounts and limits
// denominated in different currencies have to be compared.
const ReferenceCurrency = EUR

// MoneyScale is the number of fractional digits carried by every amount.
const MoneyScale = 4

var supportedCurrencies = map[Currency]bool{
	EUR: true,
	USD: true,
	GBP: true,
	CHF: true,
	PLN: true,
}

// Supported reports whether the currency is one the engine knows about.
func (c Currency) Supported() bool {
	return supportedCurrencies[c]
}

// Money is a fixed-point monetary amount tagged with its currency.
// Arithmetic is only defined between values of the same currency;
// cross-currency composition must go through the Converter first.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney creates a Money value.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// MoneyFromString parses a decimal string into a Money value.
func MoneyFromString(value string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", value, ErrInvalidAmount)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// Add returns m + other. Fails on a currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Fails on a currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("subtract %s from %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return m.Amount.StringFixed(MoneyScale) + " " + string(m.Currency)
}
