package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction record.
// PENDING is the only initial state; COMPLETED, FAILED and CANCELLED are
// terminal and a record never leaves a terminal state.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionFailed || s == TransactionCancelled
}

// TransactionKind distinguishes peer-to-peer transfers from the two
// self-referencing ATM operations.
type TransactionKind string

const (
	KindTransfer      TransactionKind = "TRANSFER"
	KindATMDeposit    TransactionKind = "ATM_DEPOSIT"
	KindATMWithdrawal TransactionKind = "ATM_WITHDRAWAL"
)

// ATM reports whether the kind is a self-referencing cash operation.
func (k TransactionKind) ATM() bool {
	return k == KindATMDeposit || k == KindATMWithdrawal
}

func (k TransactionKind) valid() bool {
	return k == KindTransfer || k.ATM()
}

// Transaction is the immutable record of a value movement. The amount is
// stored in the source account's currency. Account references are by id so
// that disabling an account never invalidates history.
type Transaction struct {
	ID                   uuid.UUID
	Reference            string
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Currency             Currency
	Description          string
	Status               TransactionStatus
	Kind                 TransactionKind
	Message              string
	CreatedAt            time.Time
	CompletedAt          *time.Time
}

// NewPendingTransaction creates a PENDING record with a candidate reference.
// The creator is responsible for advancing the record to a terminal state.
func NewPendingTransaction(kind TransactionKind, source, destination *Account, amount Money, description string, now time.Time) *Transaction {
	return &Transaction{
		ID:                   uuid.New(),
		Reference:            newTransactionReference(kind, now),
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Amount:               amount.Amount,
		Currency:             amount.Currency,
		Description:          description,
		Status:               TransactionPending,
		Kind:                 kind,
		CreatedAt:            now,
	}
}

// RegenerateReference replaces the candidate reference after a collision.
func (t *Transaction) RegenerateReference(now time.Time) {
	t.Reference = newTransactionReference(t.Kind, now)
}

// MarkCompleted advances the record to COMPLETED. Only valid from PENDING.
func (t *Transaction) MarkCompleted(now time.Time) error {
	if t.Status.Terminal() {
		return fmt.Errorf("transaction %s is already %s", t.Reference, t.Status)
	}
	t.Status = TransactionCompleted
	t.CompletedAt = &now
	return nil
}

// MarkFailed advances the record to FAILED, recording the reason.
func (t *Transaction) MarkFailed(reason string, now time.Time) error {
	if t.Status.Terminal() {
		return fmt.Errorf("transaction %s is already %s", t.Reference, t.Status)
	}
	t.Status = TransactionFailed
	t.Message = reason
	t.CompletedAt = &now
	return nil
}

// AmountMoney returns the recorded amount as a Money value.
func (t *Transaction) AmountMoney() Money {
	return Money{Amount: t.Amount, Currency: t.Currency}
}

// newTransactionReference builds a reference of the form
// TRX-<TYPE>-<timestamp>-<random>. The format is opaque to callers; only
// uniqueness matters, and the random suffix is regenerated on collision.
func newTransactionReference(kind TransactionKind, now time.Time) string {
	prefix := "TRX"
	switch kind {
	case KindTransfer:
		prefix = "TRF"
	case KindATMDeposit:
		prefix = "DEP"
	case KindATMWithdrawal:
		prefix = "WDR"
	}
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("TRX-%s-%s-%s", prefix, now.Format("20060102150405"), suffix)
}
