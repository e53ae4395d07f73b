package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/atlasbank/ledger-service/internal/domain"
)

// AmountPayload is the wire representation of a monetary amount. Value is a
// decimal string to avoid float drift in transit.
type AmountPayload struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currencyCode"`
}

// OpenAccountRequest creates a new account for an owner.
type OpenAccountRequest struct {
	OwnerID  uuid.UUID `json:"ownerId"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind,omitempty"`
	Currency string    `json:"currency,omitempty"`
}

// TransferRequest moves money between two accounts.
type TransferRequest struct {
	SourceAccount      string        `json:"sourceAccount"`
	DestinationAccount string        `json:"destinationAccount"`
	Amount             AmountPayload `json:"amount"`
	Description        string        `json:"description,omitempty"`
}

// ATMRequest deposits to or withdraws from a single account.
type ATMRequest struct {
	Account string        `json:"account"`
	Amount  AmountPayload `json:"amount"`
}

// UpdateLimitsRequest replaces an account's four limits.
type UpdateLimitsRequest struct {
	SingleTransfer   string `json:"singleTransferLimit"`
	DailyTransfer    string `json:"dailyTransferLimit"`
	SingleWithdrawal string `json:"singleWithdrawalLimit"`
	DailyWithdrawal  string `json:"dailyWithdrawalLimit"`
}

// AccountResponse is the wire representation of an account.
type AccountResponse struct {
	Number                string        `json:"number"`
	Name                  string        `json:"name"`
	Kind                  string        `json:"kind"`
	OwnerID               uuid.UUID     `json:"ownerId"`
	Balance               AmountPayload `json:"balance"`
	SingleTransferLimit   string        `json:"singleTransferLimit"`
	DailyTransferLimit    string        `json:"dailyTransferLimit"`
	SingleWithdrawalLimit string        `json:"singleWithdrawalLimit"`
	DailyWithdrawalLimit  string        `json:"dailyWithdrawalLimit"`
	TransferUsedToday     string        `json:"transferUsedToday"`
	WithdrawalUsedToday   string        `json:"withdrawalUsedToday"`
	Disabled              bool          `json:"disabled"`
	CreatedAt             time.Time     `json:"createdAt"`
}

// TransferResponse reports a committed transfer or ATM operation.
type TransferResponse struct {
	Reference         string         `json:"reference"`
	Status            string         `json:"status"`
	Kind              string         `json:"kind"`
	Debited           AmountPayload  `json:"debited"`
	Credited          AmountPayload  `json:"credited"`
	ConversionApplied bool           `json:"conversionApplied"`
	Rate              string         `json:"rate,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
}

// PreviewResponse reports what a transfer would do without executing it.
type PreviewResponse struct {
	ConversionApplied bool          `json:"conversionApplied"`
	Rate              string        `json:"rate"`
	OriginalAmount    AmountPayload `json:"originalAmount"`
	ConvertedAmount   AmountPayload `json:"convertedAmount"`
}

// TransactionResponse is one entry of an account's history.
type TransactionResponse struct {
	Reference   string        `json:"reference"`
	Kind        string        `json:"kind"`
	Status      string        `json:"status"`
	Amount      AmountPayload `json:"amount"`
	Description string        `json:"description,omitempty"`
	Message     string        `json:"message,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// ErrorResponse is the error envelope returned on every failure.
type ErrorResponse struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	ID          uuid.UUID `json:"id"`
}

func amountPayload(m domain.Money) AmountPayload {
	return AmountPayload{
		Value:        m.Amount.StringFixed(domain.MoneyScale),
		CurrencyCode: string(m.Currency),
	}
}

func accountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Number:                a.Number,
		Name:                  a.Name,
		Kind:                  a.Kind,
		OwnerID:               a.OwnerID,
		Balance:               amountPayload(a.BalanceMoney()),
		SingleTransferLimit:   a.SingleTransferLimit.StringFixed(domain.MoneyScale),
		DailyTransferLimit:    a.DailyTransferLimit.StringFixed(domain.MoneyScale),
		SingleWithdrawalLimit: a.SingleWithdrawalLimit.StringFixed(domain.MoneyScale),
		DailyWithdrawalLimit:  a.DailyWithdrawalLimit.StringFixed(domain.MoneyScale),
		TransferUsedToday:     a.TransferUsedToday.StringFixed(domain.MoneyScale),
		WithdrawalUsedToday:   a.WithdrawalUsedToday.StringFixed(domain.MoneyScale),
		Disabled:              a.Disabled,
		CreatedAt:             a.CreatedAt,
	}
}

func transferResponse(result *domain.TransferResult) TransferResponse {
	resp := TransferResponse{
		Reference:         result.Transaction.Reference,
		Status:            string(result.Transaction.Status),
		Kind:              string(result.Transaction.Kind),
		Debited:           amountPayload(result.Debited),
		Credited:          amountPayload(result.Credited),
		ConversionApplied: result.ConversionApplied,
		CompletedAt:       result.Transaction.CompletedAt,
	}
	if result.ConversionApplied {
		resp.Rate = result.Rate.String()
	}
	return resp
}

func transactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		Reference:   t.Reference,
		Kind:        string(t.Kind),
		Status:      string(t.Status),
		Amount:      AmountPayload{Value: t.Amount.StringFixed(domain.MoneyScale), CurrencyCode: string(t.Currency)},
		Description: t.Description,
		Message:     t.Message,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}
