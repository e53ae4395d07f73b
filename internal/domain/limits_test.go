package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testAccount(currency Currency, balance string, now time.Time) *Account {
	a := NewAccount(uuid.New(), newAccountNumber(), "Test Account", "checking", currency, now)
	a.Balance = decimal.RequireFromString(balance)
	return a
}

func TestShouldResetDailyUsage(t *testing.T) {
	base := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lastReset time.Time
		now       time.Time
		expected  bool
	}{
		{
			name:      "same day",
			lastReset: base,
			now:       base.Add(2 * time.Hour),
			expected:  false,
		},
		{
			name:      "exactly at next midnight",
			lastReset: base,
			now:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			expected:  false,
		},
		{
			name:      "just past next midnight",
			lastReset: base,
			now:       time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC),
			expected:  true,
		},
		{
			name:      "several days later",
			lastReset: base,
			now:       base.AddDate(0, 0, 7),
			expected:  true,
		},
		{
			name:      "clock went backwards",
			lastReset: base,
			now:       base.Add(-time.Hour),
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldResetDailyUsage(tt.lastReset, tt.now); got != tt.expected {
				t.Errorf("shouldResetDailyUsage(%v, %v) = %v, expected %v", tt.lastReset, tt.now, got, tt.expected)
			}
		})
	}
}

func TestCheckTransferLimits(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicy(NewConverter(testRateSource()))

	tests := []struct {
		name      string
		used      string
		amount    string
		wantLimit Limit
	}{
		{
			name:   "within limits",
			used:   "0",
			amount: "3000",
		},
		{
			name:      "single limit breached",
			used:      "0",
			amount:    "3000.0001",
			wantLimit: LimitSingleTransfer,
		},
		{
			name:      "daily limit breached by accumulation",
			used:      "4000",
			amount:    "1000.0001",
			wantLimit: LimitDailyTransfer,
		},
		{
			name:   "daily limit reached exactly",
			used:   "4000",
			amount: "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := testAccount(EUR, "100000", now)
			account.TransferUsedToday = decimal.RequireFromString(tt.used)

			err := policy.CheckTransfer(account, NewMoney(decimal.RequireFromString(tt.amount), EUR), now)
			if tt.wantLimit == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var limitErr *LimitExceededError
			if !errors.As(err, &limitErr) {
				t.Fatalf("expected LimitExceededError, got %v", err)
			}
			if limitErr.Limit != tt.wantLimit {
				t.Errorf("expected limit %s, got %s", tt.wantLimit, limitErr.Limit)
			}
			if !errors.Is(err, ErrLimitExceeded) {
				t.Error("LimitExceededError does not unwrap to ErrLimitExceeded")
			}
		})
	}
}

func TestCheckWithdrawLimits(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicy(NewConverter(testRateSource()))
	account := testAccount(EUR, "100000", now)

	err := policy.CheckWithdraw(account, NewMoney(decimal.RequireFromString("500.0001"), EUR), now)
	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limitErr.Limit != LimitSingleWithdrawal {
		t.Errorf("expected SINGLE_WITHDRAWAL, got %s", limitErr.Limit)
	}

	if err := policy.CheckWithdraw(account, NewMoney(decimal.NewFromInt(500), EUR), now); err != nil {
		t.Fatalf("unexpected error at the exact limit: %v", err)
	}
}

func TestLimitsNormalizedToReferenceCurrency(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicy(NewConverter(testRateSource()))

	// USD account: limits are stored in USD and compared in EUR.
	// Single transfer limit 3000 USD = 2790 EUR equivalent.
	account := testAccount(USD, "100000", now)

	// 3000 USD converts to 2790 EUR, the limit converts to the same value.
	if err := policy.CheckTransfer(account, NewMoney(decimal.NewFromInt(3000), USD), now); err != nil {
		t.Fatalf("amount at the limit should pass: %v", err)
	}

	err := policy.CheckTransfer(account, NewMoney(decimal.RequireFromString("3000.01"), USD), now)
	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limitErr.Requested.Currency != ReferenceCurrency {
		t.Errorf("expected violation amounts in %s, got %s", ReferenceCurrency, limitErr.Requested.Currency)
	}
}

func TestDailyUsageResets(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC)
	policy := NewLimitPolicy(NewConverter(testRateSource()))

	account := testAccount(EUR, "100000", day1)
	account.TransferUsedToday = decimal.RequireFromString("4999")
	account.WithdrawalUsedToday = decimal.RequireFromString("450")

	// 4999 used on day one leaves no room for 100 until the next day.
	if err := policy.CheckTransfer(account, NewMoney(decimal.NewFromInt(100), EUR), day1); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	if err := policy.CheckTransfer(account, NewMoney(decimal.NewFromInt(100), EUR), day2); err != nil {
		t.Fatalf("expected check to pass after reset: %v", err)
	}
	if !account.TransferUsedToday.IsZero() {
		t.Errorf("expected transfer usage reset to zero, got %s", account.TransferUsedToday)
	}
	if !account.WithdrawalUsedToday.IsZero() {
		t.Errorf("expected withdrawal usage reset to zero, got %s", account.WithdrawalUsedToday)
	}
	if !account.LastLimitResetAt.Equal(day2) {
		t.Errorf("expected LastLimitResetAt %v, got %v", day2, account.LastLimitResetAt)
	}
}

func TestRecordUsage(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicy(NewConverter(testRateSource()))
	account := testAccount(EUR, "100000", now)

	if err := policy.RecordTransferUsage(account, NewMoney(decimal.NewFromInt(150), EUR), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := policy.RecordWithdrawalUsage(account, NewMoney(decimal.NewFromInt(40), EUR), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.TransferUsedToday.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected transfer usage 150, got %s", account.TransferUsedToday)
	}
	if !account.WithdrawalUsedToday.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected withdrawal usage 40, got %s", account.WithdrawalUsedToday)
	}

	err := policy.RecordTransferUsage(account, NewMoney(decimal.NewFromInt(1), USD), now)
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}
