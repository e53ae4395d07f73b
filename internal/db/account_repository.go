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

// AccountRepository implements domain.AccountRepository on PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, number, name, kind, currency, balance,
	daily_transfer_limit, single_transfer_limit,
	daily_withdrawal_limit, single_withdrawal_limit,
	transfer_used_today, withdrawal_used_today, last_limit_reset_at,
	owner_id, disabled, created_at, updated_at`

// Create persists a new account.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		a.ID, a.Number, a.Name, a.Kind, string(a.Currency), a.Balance.String(),
		a.DailyTransferLimit.String(), a.SingleTransferLimit.String(),
		a.DailyWithdrawalLimit.String(), a.SingleWithdrawalLimit.String(),
		a.TransferUsedToday.String(), a.WithdrawalUsedToday.String(), a.LastLimitResetAt,
		a.OwnerID, a.Disabled, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", a.Number, domain.ErrAccountNumberExists)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = $1`
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, number))
}

// Lock retrieves an account by number with a pessimistic row lock held for
// the duration of the transaction. Must run within a transaction context.
func (r *AccountRepository) Lock(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = $1 FOR UPDATE`
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, number))
}

// ListByOwner retrieves all accounts owned by the user, oldest first.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at`
	rows, err := conn(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts by owner: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update persists an account's mutable state. Balance and usage counters go
// out in the same write.
func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, kind = $3, balance = $4,
		    daily_transfer_limit = $5, single_transfer_limit = $6,
		    daily_withdrawal_limit = $7, single_withdrawal_limit = $8,
		    transfer_used_today = $9, withdrawal_used_today = $10,
		    last_limit_reset_at = $11, disabled = $12, updated_at = $13
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		a.ID, a.Name, a.Kind, a.Balance.String(),
		a.DailyTransferLimit.String(), a.SingleTransferLimit.String(),
		a.DailyWithdrawalLimit.String(), a.SingleWithdrawalLimit.String(),
		a.TransferUsedToday.String(), a.WithdrawalUsedToday.String(),
		a.LastLimitResetAt, a.Disabled, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// scanAccount reads one account row. Numeric columns are scanned as strings
// and parsed into decimals to avoid any float intermediate.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		currency string
		balance  string
		dtl, stl string
		dwl, swl string
		tut, wut string
	)
	err := row.Scan(
		&a.ID, &a.Number, &a.Name, &a.Kind, &currency, &balance,
		&dtl, &stl, &dwl, &swl,
		&tut, &wut, &a.LastLimitResetAt,
		&a.OwnerID, &a.Disabled, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	a.Currency = domain.Currency(currency)
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&a.Balance, balance},
		{&a.DailyTransferLimit, dtl},
		{&a.SingleTransferLimit, stl},
		{&a.DailyWithdrawalLimit, dwl},
		{&a.SingleWithdrawalLimit, swl},
		{&a.TransferUsedToday, tut},
		{&a.WithdrawalUsedToday, wut},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("parse numeric column %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return &a, nil
}
