package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default limits applied to newly opened accounts, in the account currency.
var (
	defaultDailyTransferLimit    = decimal.RequireFromString("5000.00")
	defaultSingleTransferLimit   = decimal.RequireFromString("3000.00")
	defaultDailyWithdrawalLimit  = decimal.RequireFromString("5000.00")
	defaultSingleWithdrawalLimit = decimal.RequireFromString("500.00")
)

// Account is a bank account. It owns its balance, limits and daily usage
// counters; all mutation goes through the Ledger or the explicit limit-edit
// operation. Accounts are never deleted, only soft-disabled.
type Account struct {
	ID       uuid.UUID
	Number   string // unique IBAN-like account number
	Name     string
	Kind     string // checking/savings, free-form
	Currency Currency
	Balance  decimal.Decimal

	DailyTransferLimit    decimal.Decimal
	SingleTransferLimit   decimal.Decimal
	DailyWithdrawalLimit  decimal.Decimal
	SingleWithdrawalLimit decimal.Decimal
	TransferUsedToday     decimal.Decimal
	WithdrawalUsedToday   decimal.Decimal
	LastLimitResetAt      time.Time

	// OwnerID is a weak reference to the owning user; lookups go through the
	// store, the account does not manage the user's lifecycle.
	OwnerID uuid.UUID

	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates an account with a zero balance and default limits.
// Currency defaults to EUR when unset.
func NewAccount(ownerID uuid.UUID, number, name, kind string, currency Currency, now time.Time) *Account {
	if currency == "" {
		currency = EUR
	}
	return &Account{
		ID:                    uuid.New(),
		Number:                number,
		Name:                  name,
		Kind:                  kind,
		Currency:              currency,
		Balance:               decimal.Zero,
		DailyTransferLimit:    defaultDailyTransferLimit,
		SingleTransferLimit:   defaultSingleTransferLimit,
		DailyWithdrawalLimit:  defaultDailyWithdrawalLimit,
		SingleWithdrawalLimit: defaultSingleWithdrawalLimit,
		TransferUsedToday:     decimal.Zero,
		WithdrawalUsedToday:   decimal.Zero,
		LastLimitResetAt:      now,
		OwnerID:               ownerID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// BalanceMoney returns the balance as a Money value.
func (a *Account) BalanceMoney() Money {
	return Money{Amount: a.Balance, Currency: a.Currency}
}

// Limits groups the four editable limit fields, in the account currency.
type Limits struct {
	DailyTransfer    decimal.Decimal
	SingleTransfer   decimal.Decimal
	DailyWithdrawal  decimal.Decimal
	SingleWithdrawal decimal.Decimal
}

// ApplyLimits replaces the account's limit fields. Limits must be positive.
func (a *Account) ApplyLimits(l Limits, now time.Time) error {
	for _, d := range []decimal.Decimal{l.DailyTransfer, l.SingleTransfer, l.DailyWithdrawal, l.SingleWithdrawal} {
		if !d.IsPositive() {
			return fmt.Errorf("limit must be positive: %w", ErrInvalidAmount)
		}
	}
	a.DailyTransferLimit = l.DailyTransfer
	a.SingleTransferLimit = l.SingleTransfer
	a.DailyWithdrawalLimit = l.DailyWithdrawal
	a.SingleWithdrawalLimit = l.SingleWithdrawal
	a.UpdatedAt = now
	return nil
}

// newAccountNumber generates a candidate IBAN-like account number:
// NL + two check digits + bank code + ten account digits. Uniqueness is
// enforced by the store; collisions are retried with a fresh candidate.
func newAccountNumber() string {
	check := 10 + rand.Intn(90)
	digits := 1_000_000_000 + rand.Int63n(9_000_000_000)
	return fmt.Sprintf("NL%02dATLB%010d", check, digits)
}
