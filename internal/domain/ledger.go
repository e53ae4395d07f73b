package domain

import (
	"context"
	"fmt"
	"time"
)

// DebitPolicy selects which limit set a debit is checked against.
type DebitPolicy int

const (
	// DebitPolicyTransfer checks the transfer limits (peer-to-peer transfers).
	DebitPolicyTransfer DebitPolicy = iota
	// DebitPolicyWithdrawal checks the withdrawal limits (ATM withdrawals).
	DebitPolicyWithdrawal
)

// Ledger owns balance mutation. Every successful debit or credit persists the
// account's new balance and usage counters as a single write through the
// store; callers are expected to run inside a unit of work that holds a lock
// on the account.
type Ledger struct {
	accounts AccountRepository
	limits   *LimitPolicy
}

// NewLedger creates a Ledger.
func NewLedger(accounts AccountRepository, limits *LimitPolicy) *Ledger {
	return &Ledger{accounts: accounts, limits: limits}
}

// Debit subtracts the amount from the account balance and records the usage
// implied by the policy. The amount must be positive and in the account's
// currency. The limit check runs before the funds check; neither mutates
// state on rejection.
func (l *Ledger) Debit(ctx context.Context, a *Account, amount Money, policy DebitPolicy, now time.Time) error {
	if err := validateMutation(a, amount); err != nil {
		return err
	}

	switch policy {
	case DebitPolicyTransfer:
		if err := l.limits.CheckTransfer(a, amount, now); err != nil {
			return err
		}
	case DebitPolicyWithdrawal:
		if err := l.limits.CheckWithdraw(a, amount, now); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown debit policy %d", policy)
	}

	if a.Balance.LessThan(amount.Amount) {
		return fmt.Errorf("balance %s, requested %s: %w", a.BalanceMoney(), amount, ErrInsufficientFunds)
	}

	a.Balance = a.Balance.Sub(amount.Amount)
	switch policy {
	case DebitPolicyTransfer:
		if err := l.limits.RecordTransferUsage(a, amount, now); err != nil {
			return err
		}
	case DebitPolicyWithdrawal:
		if err := l.limits.RecordWithdrawalUsage(a, amount, now); err != nil {
			return err
		}
	}
	a.UpdatedAt = now

	if err := l.accounts.Update(ctx, a); err != nil {
		return fmt.Errorf("persist debit: %w", err)
	}
	return nil
}

// Credit adds the amount to the account balance. Credits are never
// limit-checked on the receiving side.
func (l *Ledger) Credit(ctx context.Context, a *Account, amount Money, now time.Time) error {
	if err := validateMutation(a, amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Add(amount.Amount)
	a.UpdatedAt = now

	if err := l.accounts.Update(ctx, a); err != nil {
		return fmt.Errorf("persist credit: %w", err)
	}
	return nil
}

// Deposit credits the account and meters the amount against the transfer
// limits. Cash deposits deliberately share the transfer limit set; there is
// no dedicated deposit limit.
func (l *Ledger) Deposit(ctx context.Context, a *Account, amount Money, now time.Time) error {
	if err := validateMutation(a, amount); err != nil {
		return err
	}
	if err := l.limits.CheckTransfer(a, amount, now); err != nil {
		return err
	}

	a.Balance = a.Balance.Add(amount.Amount)
	if err := l.limits.RecordTransferUsage(a, amount, now); err != nil {
		return err
	}
	a.UpdatedAt = now

	if err := l.accounts.Update(ctx, a); err != nil {
		return fmt.Errorf("persist deposit: %w", err)
	}
	return nil
}

func validateMutation(a *Account, amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Currency != a.Currency {
		return fmt.Errorf("mutate %s account with %s amount: %w", a.Currency, amount.Currency, ErrCurrencyMismatch)
	}
	if a.Disabled {
		return fmt.Errorf("account %s: %w", a.Number, ErrAccountDisabled)
	}
	return nil
}
