package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestTransactionReferenceFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 5, 42, 0, time.UTC)
	source := testAccount(EUR, "0", now)
	destination := testAccount(EUR, "0", now)
	amount := NewMoney(decimal.NewFromInt(10), EUR)

	tests := []struct {
		kind    TransactionKind
		pattern string
	}{
		{KindTransfer, `^TRX-TRF-20260314090542-[0-9A-F]{8}$`},
		{KindATMDeposit, `^TRX-DEP-20260314090542-[0-9A-F]{8}$`},
		{KindATMWithdrawal, `^TRX-WDR-20260314090542-[0-9A-F]{8}$`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			record := NewPendingTransaction(tt.kind, source, destination, amount, "", now)
			if !regexp.MustCompile(tt.pattern).MatchString(record.Reference) {
				t.Errorf("reference %q does not match %s", record.Reference, tt.pattern)
			}
			if record.Status != TransactionPending {
				t.Errorf("expected new record to be PENDING, got %s", record.Status)
			}
		})
	}
}

func TestRegenerateReferenceChanges(t *testing.T) {
	now := time.Now()
	record := NewPendingTransaction(KindTransfer, testAccount(EUR, "0", now), testAccount(EUR, "0", now), NewMoney(decimal.NewFromInt(1), EUR), "", now)

	before := record.Reference
	record.RegenerateReference(now)
	if record.Reference == before {
		t.Error("expected a fresh reference after regeneration")
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	now := time.Now()
	source := testAccount(EUR, "0", now)
	amount := NewMoney(decimal.NewFromInt(1), EUR)

	completed := NewPendingTransaction(KindTransfer, source, source, amount, "", now)
	if err := completed.MarkCompleted(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}
	if err := completed.MarkFailed("late failure", now); err == nil {
		t.Error("expected MarkFailed on a COMPLETED record to fail")
	}
	if completed.Status != TransactionCompleted {
		t.Errorf("status changed to %s", completed.Status)
	}

	failed := NewPendingTransaction(KindTransfer, source, source, amount, "", now)
	if err := failed.MarkFailed("insufficient funds", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Message != "insufficient funds" {
		t.Errorf("expected failure message recorded, got %q", failed.Message)
	}
	if err := failed.MarkCompleted(now); err == nil {
		t.Error("expected MarkCompleted on a FAILED record to fail")
	}
}

func TestNewAccountDefaults(t *testing.T) {
	now := time.Now()
	account := NewAccount(uuid.New(), newAccountNumber(), "Main", "checking", "", now)

	if account.Currency != EUR {
		t.Errorf("expected default currency EUR, got %s", account.Currency)
	}
	if !account.Balance.IsZero() {
		t.Errorf("expected zero balance, got %s", account.Balance)
	}
	if !account.SingleTransferLimit.Equal(decimal.RequireFromString("3000.00")) {
		t.Errorf("unexpected single transfer limit %s", account.SingleTransferLimit)
	}
	if !account.DailyTransferLimit.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("unexpected daily transfer limit %s", account.DailyTransferLimit)
	}
	if !account.SingleWithdrawalLimit.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("unexpected single withdrawal limit %s", account.SingleWithdrawalLimit)
	}
	if !account.DailyWithdrawalLimit.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("unexpected daily withdrawal limit %s", account.DailyWithdrawalLimit)
	}
}

func TestAccountNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^NL\d{2}ATLB\d{10}$`)
	for i := 0; i < 20; i++ {
		number := newAccountNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("account number %q does not match %s", number, pattern)
		}
	}
}

func TestApplyLimitsRejectsNonPositive(t *testing.T) {
	now := time.Now()
	account := testAccount(EUR, "0", now)

	err := account.ApplyLimits(Limits{
		DailyTransfer:    decimal.NewFromInt(1000),
		SingleTransfer:   decimal.Zero,
		DailyWithdrawal:  decimal.NewFromInt(1000),
		SingleWithdrawal: decimal.NewFromInt(100),
	}, now)
	if err == nil {
		t.Fatal("expected error for zero limit")
	}
}
