package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LimitPolicy enforces the per-account single-operation and daily caps on
// transfers and withdrawals. Limits are denominated in the account's own
// currency but a request may arrive in another currency, so every comparison
// is normalized into the reference currency at check time.
//
// The daily usage counters reset lazily on the access path: every check and
// every usage update first applies the reset. There is no background job;
// correctness depends on the reset running at the moment of access.
type LimitPolicy struct {
	converter *Converter
}

// NewLimitPolicy creates a LimitPolicy using the converter for
// reference-currency normalization.
func NewLimitPolicy(converter *Converter) *LimitPolicy {
	return &LimitPolicy{converter: converter}
}

// shouldResetDailyUsage reports whether now is past the start-of-day boundary
// following lastReset's calendar date.
func shouldResetDailyUsage(lastReset, now time.Time) bool {
	y, m, d := lastReset.Date()
	boundary := time.Date(y, m, d, 0, 0, 0, 0, lastReset.Location()).AddDate(0, 0, 1)
	return now.After(boundary)
}

// ResetIfNewDay zeroes both usage counters the first time the account is
// touched after midnight of the last reset's day.
func (p *LimitPolicy) ResetIfNewDay(a *Account, now time.Time) {
	if shouldResetDailyUsage(a.LastLimitResetAt, now) {
		a.TransferUsedToday = decimal.Zero
		a.WithdrawalUsedToday = decimal.Zero
		a.LastLimitResetAt = now
	}
}

// CheckTransfer returns nil when the amount passes the account's transfer
// limits, or a LimitExceededError identifying the breached limit.
// The amount must be in the account's currency.
func (p *LimitPolicy) CheckTransfer(a *Account, amount Money, now time.Time) error {
	p.ResetIfNewDay(a, now)
	return p.check(a, amount,
		a.SingleTransferLimit, a.DailyTransferLimit, a.TransferUsedToday,
		LimitSingleTransfer, LimitDailyTransfer)
}

// CheckWithdraw returns nil when the amount passes the account's withdrawal
// limits, or a LimitExceededError identifying the breached limit.
func (p *LimitPolicy) CheckWithdraw(a *Account, amount Money, now time.Time) error {
	p.ResetIfNewDay(a, now)
	return p.check(a, amount,
		a.SingleWithdrawalLimit, a.DailyWithdrawalLimit, a.WithdrawalUsedToday,
		LimitSingleWithdrawal, LimitDailyWithdrawal)
}

// check compares the requested amount against a single and a daily limit.
// Amount, limits and usage are all converted into the reference currency
// first, since limits are per-account but requests may cross currencies.
func (p *LimitPolicy) check(a *Account, amount Money, single, daily, used decimal.Decimal, singleKind, dailyKind Limit) error {
	if amount.Currency != a.Currency {
		return fmt.Errorf("limit check on %s account with %s amount: %w", a.Currency, amount.Currency, ErrCurrencyMismatch)
	}

	requested, err := p.converter.Convert(amount, ReferenceCurrency)
	if err != nil {
		return err
	}
	singleRef, err := p.converter.Convert(Money{Amount: single, Currency: a.Currency}, ReferenceCurrency)
	if err != nil {
		return err
	}
	dailyRef, err := p.converter.Convert(Money{Amount: daily, Currency: a.Currency}, ReferenceCurrency)
	if err != nil {
		return err
	}
	usedRef, err := p.converter.Convert(Money{Amount: used, Currency: a.Currency}, ReferenceCurrency)
	if err != nil {
		return err
	}

	if requested.Amount.GreaterThan(singleRef.Amount) {
		return &LimitExceededError{Limit: singleKind, Requested: requested, Max: singleRef}
	}
	if usedRef.Amount.Add(requested.Amount).GreaterThan(dailyRef.Amount) {
		return &LimitExceededError{Limit: dailyKind, Requested: requested, Max: dailyRef}
	}
	return nil
}

// RecordTransferUsage adds the amount to the account's transfer usage
// counter. Must only be called once the corresponding balance mutation has
// been accepted inside the same unit of work.
func (p *LimitPolicy) RecordTransferUsage(a *Account, amount Money, now time.Time) error {
	if amount.Currency != a.Currency {
		return fmt.Errorf("record transfer usage: %w", ErrCurrencyMismatch)
	}
	p.ResetIfNewDay(a, now)
	a.TransferUsedToday = a.TransferUsedToday.Add(amount.Amount)
	return nil
}

// RecordWithdrawalUsage adds the amount to the account's withdrawal usage
// counter.
func (p *LimitPolicy) RecordWithdrawalUsage(a *Account, amount Money, now time.Time) error {
	if amount.Currency != a.Currency {
		return fmt.Errorf("record withdrawal usage: %w", ErrCurrencyMismatch)
	}
	p.ResetIfNewDay(a, now)
	a.WithdrawalUsedToday = a.WithdrawalUsedToday.Add(amount.Amount)
	return nil
}
