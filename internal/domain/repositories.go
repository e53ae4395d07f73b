package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository is the persistence contract for accounts.
type AccountRepository interface {
	// Create persists a new account. Returns ErrAccountNumberExists when the
	// account number is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByNumber retrieves an account by its account number.
	// Returns ErrAccountNotFound when no such account exists.
	GetByNumber(ctx context.Context, number string) (*Account, error)

	// Lock retrieves an account by number and holds a lock on it for the
	// duration of the surrounding transaction, so that balance and usage
	// reads cannot interleave with concurrent writers. Must be called within
	// a transaction context.
	Lock(ctx context.Context, number string) (*Account, error)

	// ListByOwner retrieves all accounts owned by the given user id.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)

	// Update persists changes to an existing account. Balance and usage
	// counters are written together as one update.
	Update(ctx context.Context, account *Account) error
}

// TransactionFilter narrows a transaction listing. Zero-valued fields are
// ignored.
type TransactionFilter struct {
	From        *time.Time
	To          *time.Time
	Status      TransactionStatus
	Kind        TransactionKind
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Description string // substring match, case-insensitive
}

// TransactionRepository is the persistence contract for transaction records.
type TransactionRepository interface {
	// Create persists a new transaction record. Returns ErrReferenceExists
	// when the reference is already taken.
	Create(ctx context.Context, tx *Transaction) error

	// Update persists status changes to an existing record.
	Update(ctx context.Context, tx *Transaction) error

	// GetByReference retrieves a record by its unique reference.
	// Returns nil, nil when no record carries the reference.
	GetByReference(ctx context.Context, reference string) (*Transaction, error)

	// ListByAccount retrieves records where the account appears on either
	// side, newest first, optionally narrowed by the filter.
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]*Transaction, error)
}

// TransactionManager runs a function inside a single atomic unit of work.
// If the function returns an error the work is rolled back, otherwise it is
// committed. The underlying transaction travels in the context so that
// repositories participate transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems.
type EventPublisher interface {
	PublishTransactionCompleted(ctx context.Context, tx *Transaction) error
}
