package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlasbank/ledger-service/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository on PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, reference, source_account_id, destination_account_id,
	amount, currency, description, status, kind, message, created_at, completed_at`

// Create persists a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		t.ID, t.Reference, t.SourceAccountID, t.DestinationAccountID,
		t.Amount.String(), string(t.Currency), t.Description,
		string(t.Status), string(t.Kind), t.Message, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reference %s: %w", t.Reference, domain.ErrReferenceExists)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// Update persists status changes to an existing record.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2, message = $3, completed_at = $4
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		t.ID, string(t.Status), t.Message, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", t.Reference)
	}
	return nil
}

// GetByReference retrieves a record by its unique reference, or nil, nil
// when no record carries it.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	t, err := scanTransaction(conn(ctx, r.pool).QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByAccount retrieves records where the account appears as source or
// destination, newest first, narrowed by the filter.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (source_account_id = $1 OR destination_account_id = $1)`
	args := []any{accountID}

	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.MinAmount != nil {
		add("amount >= $%d", filter.MinAmount.String())
	}
	if filter.MaxAmount != nil {
		add("amount <= $%d", filter.MaxAmount.String())
	}
	if filter.Description != "" {
		add("description ILIKE '%%' || $%d || '%%'", filter.Description)
	}
	query += " ORDER BY created_at DESC"

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var records []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		amount   string
		currency string
		status   string
		kind     string
	)
	err := row.Scan(
		&t.ID, &t.Reference, &t.SourceAccountID, &t.DestinationAccountID,
		&amount, &currency, &t.Description, &status, &kind, &t.Message,
		&t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Currency = domain.Currency(currency)
	t.Status = domain.TransactionStatus(status)
	t.Kind = domain.TransactionKind(kind)
	return &t, nil
}
