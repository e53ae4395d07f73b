package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when an account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountDisabled is returned when an operation touches a soft-disabled account.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrInvalidAmount is returned when an amount is zero, negative, or unparseable.
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrInsufficientFunds is returned when a debit exceeds the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLimitExceeded is returned when a single-operation or daily limit is breached.
	// The concrete violation is carried by LimitExceededError.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrUnknownCurrencyPair is returned when no conversion rate is defined
	// for an ordered currency pair.
	ErrUnknownCurrencyPair = errors.New("no exchange rate for currency pair")

	// ErrCurrencyMismatch is returned when same-currency arithmetic is attempted
	// on values of different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrUnsupportedCurrency is returned for currency codes the engine doesn't know.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrSameAccount is returned when a peer-to-peer transfer references a
	// single account, or when an ATM operation references two.
	ErrSameAccount = errors.New("invalid source/destination account pairing")

	// ErrAccountNumberExists is returned by stores on an account number collision.
	// Account number generation retries transparently on it.
	ErrAccountNumberExists = errors.New("account number already exists")

	// ErrReferenceExists is returned by stores on a transaction reference
	// collision. Reference generation retries transparently on it; callers of
	// the orchestrator never observe it.
	ErrReferenceExists = errors.New("transaction reference already exists")
)

// Limit identifies which of the four per-account limits was breached.
type Limit string

const (
	LimitSingleTransfer   Limit = "SINGLE_TRANSFER"
	LimitDailyTransfer    Limit = "DAILY_TRANSFER"
	LimitSingleWithdrawal Limit = "SINGLE_WITHDRAWAL"
	LimitDailyWithdrawal  Limit = "DAILY_WITHDRAWAL"
)

// LimitExceededError reports a breached limit. Amounts are expressed in the
// reference currency, the unit the comparison was made in.
type LimitExceededError struct {
	Limit     Limit
	Requested Money
	Max       Money
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: requested %s, limit %s equivalent", e.Limit, e.Requested, e.Max)
}

func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}
