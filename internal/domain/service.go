package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// referenceAttempts caps transparent retries when a generated transaction
// reference or account number collides with an existing one.
const referenceAttempts = 5

// TransferService is the orchestrator: it composes the converter, limit
// policy, ledger and transaction log to execute transfers and ATM operations
// as one atomic unit of work, and owns the account lifecycle operations.
type TransferService struct {
	accounts     AccountRepository
	transactions TransactionRepository
	txManager    TransactionManager
	converter    *Converter
	limits       *LimitPolicy
	ledger       *Ledger

	// Optional publisher for transaction-completed events; nil disables them.
	events EventPublisher

	// now is the clock; replaceable in tests.
	now func() time.Time
}

// NewTransferService wires the engine together. Pass nil for events if no
// events should be emitted.
func NewTransferService(
	accounts AccountRepository,
	transactions TransactionRepository,
	txManager TransactionManager,
	rates RateSource,
	events EventPublisher,
) *TransferService {
	converter := NewConverter(rates)
	limits := NewLimitPolicy(converter)
	return &TransferService{
		accounts:     accounts,
		transactions: transactions,
		txManager:    txManager,
		converter:    converter,
		limits:       limits,
		ledger:       NewLedger(accounts, limits),
		events:       events,
		now:          time.Now,
	}
}

// TransferResult is the outcome of a committed operation. Rate and the two
// amounts are only meaningful when ConversionApplied is true.
type TransferResult struct {
	Transaction       *Transaction
	ConversionApplied bool
	Rate              decimal.Decimal
	Debited           Money
	Credited          Money
}

// Execute runs a transfer or ATM operation as a single atomic unit: either
// all of source debit, usage update, destination credit and transaction
// record are durably applied, or none are.
//
// For ATM kinds source and destination must be the same account; for
// TRANSFER they must differ. The amount may arrive in any supported
// currency; it is normalized into the source account's currency before the
// debit, and the destination is credited with the converted amount when the
// two accounts hold different currencies.
func (s *TransferService) Execute(
	ctx context.Context,
	kind TransactionKind,
	sourceNumber, destinationNumber string,
	amount Money,
	description string,
) (*TransferResult, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !amount.Currency.Supported() {
		return nil, fmt.Errorf("%q: %w", amount.Currency, ErrUnsupportedCurrency)
	}
	if kind == KindTransfer && sourceNumber == destinationNumber {
		return nil, fmt.Errorf("transfer to the same account: %w", ErrSameAccount)
	}
	if kind.ATM() && sourceNumber != destinationNumber {
		return nil, fmt.Errorf("%s must reference a single account: %w", kind, ErrSameAccount)
	}

	var result *TransferResult
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		source, destination, err := s.lockPair(ctx, sourceNumber, destinationNumber)
		if err != nil {
			return err
		}
		if source.Disabled {
			return fmt.Errorf("account %s: %w", source.Number, ErrAccountDisabled)
		}
		if destination.Disabled {
			return fmt.Errorf("account %s: %w", destination.Number, ErrAccountDisabled)
		}

		now := s.now()

		// The debit is always in the source currency; a request arriving in
		// another currency is converted first.
		debit, err := s.converter.Convert(amount, source.Currency)
		if err != nil {
			return err
		}

		conversionApplied := ConversionNeeded(source.Currency, destination.Currency)
		credit := debit
		rate := decimal.NewFromInt(1)
		if conversionApplied {
			rate, err = s.converter.Rate(source.Currency, destination.Currency)
			if err != nil {
				return err
			}
			credit, err = s.converter.Convert(debit, destination.Currency)
			if err != nil {
				return err
			}
		}

		record, err := s.createPending(ctx, kind, source, destination, debit, description, now)
		if err != nil {
			return err
		}

		switch kind {
		case KindTransfer:
			if err := s.ledger.Debit(ctx, source, debit, DebitPolicyTransfer, now); err != nil {
				return s.fail(record, err, now)
			}
			if err := s.ledger.Credit(ctx, destination, credit, now); err != nil {
				return s.fail(record, err, now)
			}
		case KindATMDeposit:
			// Deposits are metered against the transfer limits.
			if err := s.ledger.Deposit(ctx, source, debit, now); err != nil {
				return s.fail(record, err, now)
			}
		case KindATMWithdrawal:
			if err := s.ledger.Debit(ctx, source, debit, DebitPolicyWithdrawal, now); err != nil {
				return s.fail(record, err, now)
			}
		}

		if err := record.MarkCompleted(s.now()); err != nil {
			return err
		}
		if err := s.transactions.Update(ctx, record); err != nil {
			return fmt.Errorf("persist completed transaction: %w", err)
		}

		result = &TransferResult{
			Transaction:       record,
			ConversionApplied: conversionApplied,
			Rate:              rate,
			Debited:           debit,
			Credited:          credit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Publish after commit, best effort: a broker hiccup must not make an
	// already-committed operation look failed.
	if s.events != nil {
		go func(tx *Transaction) {
			if err := s.events.PublishTransactionCompleted(context.Background(), tx); err != nil {
				slog.Warn("failed to publish transaction completed event",
					"reference", tx.Reference, "error", err)
			}
		}(result.Transaction)
	}

	return result, nil
}

// lockPair locks the two accounts in a deterministic order to prevent
// deadlocks between concurrent transfers. ATM operations lock one account.
func (s *TransferService) lockPair(ctx context.Context, sourceNumber, destinationNumber string) (*Account, *Account, error) {
	if sourceNumber == destinationNumber {
		acc, err := s.accounts.Lock(ctx, sourceNumber)
		if err != nil {
			return nil, nil, err
		}
		return acc, acc, nil
	}

	first, second := sourceNumber, destinationNumber
	if second < first {
		first, second = second, first
	}
	a, err := s.accounts.Lock(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.accounts.Lock(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if first == sourceNumber {
		return a, b, nil
	}
	return b, a, nil
}

// createPending inserts the PENDING record, regenerating the reference on a
// collision. Collisions are an internal detail and never surface to callers.
func (s *TransferService) createPending(ctx context.Context, kind TransactionKind, source, destination *Account, amount Money, description string, now time.Time) (*Transaction, error) {
	record := NewPendingTransaction(kind, source, destination, amount, description, now)
	for attempt := 0; ; attempt++ {
		existing, err := s.transactions.GetByReference(ctx, record.Reference)
		if err != nil {
			return nil, fmt.Errorf("check reference: %w", err)
		}
		if existing == nil {
			break
		}
		if attempt+1 >= referenceAttempts {
			return nil, fmt.Errorf("could not generate a unique transaction reference after %d attempts", referenceAttempts)
		}
		record.RegenerateReference(now)
	}
	if err := s.transactions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create pending transaction: %w", err)
	}
	return record, nil
}

// fail marks the record FAILED and returns the original error. The rollback
// of the surrounding unit of work discards the record along with any balance
// mutation, leaving both accounts untouched.
func (s *TransferService) fail(record *Transaction, cause error, now time.Time) error {
	if err := record.MarkFailed(cause.Error(), now); err != nil {
		return err
	}
	return cause
}

// TransferPreview describes what a transfer would do, without executing it.
type TransferPreview struct {
	ConversionApplied bool
	Rate              decimal.Decimal
	OriginalAmount    Money
	ConvertedAmount   Money
}

// PreviewTransfer validates a prospective transfer and reports the exchange
// information that would apply. Nothing is mutated.
func (s *TransferService) PreviewTransfer(ctx context.Context, sourceNumber, destinationNumber string, amount Money) (*TransferPreview, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if sourceNumber == destinationNumber {
		return nil, fmt.Errorf("transfer to the same account: %w", ErrSameAccount)
	}

	source, err := s.accounts.GetByNumber(ctx, sourceNumber)
	if err != nil {
		return nil, err
	}
	destination, err := s.accounts.GetByNumber(ctx, destinationNumber)
	if err != nil {
		return nil, err
	}
	if source.Disabled || destination.Disabled {
		return nil, ErrAccountDisabled
	}

	debit, err := s.converter.Convert(amount, source.Currency)
	if err != nil {
		return nil, err
	}
	if source.Balance.LessThan(debit.Amount) {
		return nil, fmt.Errorf("balance %s, requested %s: %w", source.BalanceMoney(), debit, ErrInsufficientFunds)
	}
	if err := s.limits.CheckTransfer(source, debit, s.now()); err != nil {
		return nil, err
	}

	preview := &TransferPreview{
		OriginalAmount:  debit,
		ConvertedAmount: debit,
		Rate:            decimal.NewFromInt(1),
	}
	if ConversionNeeded(source.Currency, destination.Currency) {
		preview.ConversionApplied = true
		preview.Rate, err = s.converter.Rate(source.Currency, destination.Currency)
		if err != nil {
			return nil, err
		}
		preview.ConvertedAmount, err = s.converter.Convert(debit, destination.Currency)
		if err != nil {
			return nil, err
		}
	}
	return preview, nil
}

// OpenAccount creates an account for the owner with a freshly generated
// unique account number, a zero balance and default limits.
func (s *TransferService) OpenAccount(ctx context.Context, ownerID uuid.UUID, name, kind string, currency Currency) (*Account, error) {
	if currency != "" && !currency.Supported() {
		return nil, fmt.Errorf("%q: %w", currency, ErrUnsupportedCurrency)
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		account := NewAccount(ownerID, newAccountNumber(), name, kind, currency, s.now())
		err := s.accounts.Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, ErrAccountNumberExists) {
			return nil, fmt.Errorf("create account: %w", err)
		}
	}
	return nil, fmt.Errorf("could not generate a unique account number after %d attempts", referenceAttempts)
}

// DisableAccount soft-disables an account. History stays intact; new debits
// and credits are rejected.
func (s *TransferService) DisableAccount(ctx context.Context, number string) (*Account, error) {
	var account *Account
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accounts.Lock(ctx, number)
		if err != nil {
			return err
		}
		account.Disabled = true
		account.UpdatedAt = s.now()
		return s.accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateLimits replaces the account's four limit fields. Privileged.
func (s *TransferService) UpdateLimits(ctx context.Context, number string, limits Limits) (*Account, error) {
	var account *Account
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accounts.Lock(ctx, number)
		if err != nil {
			return err
		}
		if err := account.ApplyLimits(limits, s.now()); err != nil {
			return err
		}
		return s.accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount retrieves an account by number.
func (s *TransferService) GetAccount(ctx context.Context, number string) (*Account, error) {
	return s.accounts.GetByNumber(ctx, number)
}

// ListAccountsByOwner retrieves the accounts owned by a user id.
func (s *TransferService) ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return s.accounts.ListByOwner(ctx, ownerID)
}

// ListTransactions retrieves the transaction history touching an account on
// either side, newest first.
func (s *TransferService) ListTransactions(ctx context.Context, number string, filter TransactionFilter) ([]*Transaction, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.transactions.ListByAccount(ctx, account.ID, filter)
}
