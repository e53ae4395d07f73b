package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasbank/ledger-service/internal/domain"
)

// Service is the part of the transfer engine the HTTP layer depends on.
type Service interface {
	Execute(ctx context.Context, kind domain.TransactionKind, sourceNumber, destinationNumber string, amount domain.Money, description string) (*domain.TransferResult, error)
	PreviewTransfer(ctx context.Context, sourceNumber, destinationNumber string, amount domain.Money) (*domain.TransferPreview, error)
	OpenAccount(ctx context.Context, ownerID uuid.UUID, name, kind string, currency domain.Currency) (*domain.Account, error)
	DisableAccount(ctx context.Context, number string) (*domain.Account, error)
	UpdateLimits(ctx context.Context, number string, limits domain.Limits) (*domain.Account, error)
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
	ListTransactions(ctx context.Context, number string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
}

// Handler exposes the transfer engine over HTTP.
type Handler struct {
	service Service
}

// NewHandler creates a new Handler backed by the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// OpenAccount handles POST /accounts.
func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}
	if req.OwnerID == uuid.Nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "ownerId is required")
		return
	}
	if req.Name == "" {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	account, err := h.service.OpenAccount(r.Context(), req.OwnerID, req.Name, req.Kind, domain.Currency(req.Currency))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse(account))
}

// GetAccount handles GET /accounts/{number}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

// ListAccounts handles GET /accounts?owner={uuid}.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(r.URL.Query().Get("owner"))
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "owner query parameter must be a UUID")
		return
	}

	accounts, err := h.service.ListAccountsByOwner(r.Context(), ownerID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, accountResponse(account))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DisableAccount handles POST /accounts/{number}/disable.
func (h *Handler) DisableAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.DisableAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

// UpdateLimits handles PUT /accounts/{number}/limits.
func (h *Handler) UpdateLimits(w http.ResponseWriter, r *http.Request) {
	var req UpdateLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	limits := domain.Limits{}
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"singleTransferLimit", req.SingleTransfer, &limits.SingleTransfer},
		{"dailyTransferLimit", req.DailyTransfer, &limits.DailyTransfer},
		{"singleWithdrawalLimit", req.SingleWithdrawal, &limits.SingleWithdrawal},
		{"dailyWithdrawalLimit", req.DailyWithdrawal, &limits.DailyWithdrawal},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", f.name+" must be a decimal string")
			return
		}
		*f.dst = d
	}

	account, err := h.service.UpdateLimits(r.Context(), chi.URLParam(r, "number"), limits)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

// Transfer handles POST /transfers.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}
	if req.SourceAccount == "" || req.DestinationAccount == "" {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "sourceAccount and destinationAccount are required")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result, err := h.service.Execute(r.Context(), domain.KindTransfer, req.SourceAccount, req.DestinationAccount, amount, req.Description)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse(result))
}

// PreviewTransfer handles POST /transfers/preview.
func (h *Handler) PreviewTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	preview, err := h.service.PreviewTransfer(r.Context(), req.SourceAccount, req.DestinationAccount, amount)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		ConversionApplied: preview.ConversionApplied,
		Rate:              preview.Rate.String(),
		OriginalAmount:    amountPayload(preview.OriginalAmount),
		ConvertedAmount:   amountPayload(preview.ConvertedAmount),
	})
}

// Deposit handles POST /atm/deposits.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.atmOperation(w, r, domain.KindATMDeposit)
}

// Withdraw handles POST /atm/withdrawals.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.atmOperation(w, r, domain.KindATMWithdrawal)
}

func (h *Handler) atmOperation(w http.ResponseWriter, r *http.Request, kind domain.TransactionKind) {
	var req ATMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}
	if req.Account == "" {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "account is required")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result, err := h.service.Execute(r.Context(), kind, req.Account, req.Account, amount, "")
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse(result))
}

// ListTransactions handles GET /accounts/{number}/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "number"), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, transactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseAmount(p AmountPayload) (domain.Money, error) {
	if p.CurrencyCode == "" {
		return domain.Money{}, domain.ErrUnsupportedCurrency
	}
	return domain.MoneyFromString(p.Value, domain.Currency(p.CurrencyCode))
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Status:      domain.TransactionStatus(q.Get("status")),
		Kind:        domain.TransactionKind(q.Get("kind")),
		Description: q.Get("description"),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("from must be an RFC3339 timestamp")
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("to must be an RFC3339 timestamp")
		}
		filter.To = &t
	}
	if v := q.Get("minAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("minAmount must be a decimal string")
		}
		filter.MinAmount = &d
	}
	if v := q.Get("maxAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("maxAmount must be a decimal string")
		}
		filter.MaxAmount = &d
	}
	return filter, nil
}

// handleDomainError maps domain errors to HTTP responses.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		sendErrorResponse(w, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
	case errors.Is(err, domain.ErrSameAccount):
		sendErrorResponse(w, http.StatusBadRequest, "SAME_ACCOUNT", err.Error())
	case errors.Is(err, domain.ErrCurrencyMismatch):
		sendErrorResponse(w, http.StatusBadRequest, "CURRENCY_MISMATCH", err.Error())
	case errors.Is(err, domain.ErrUnknownCurrencyPair):
		sendErrorResponse(w, http.StatusBadRequest, "UNKNOWN_CURRENCY_PAIR", err.Error())
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		sendErrorResponse(w, http.StatusBadRequest, "UNSUPPORTED_CURRENCY", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		sendErrorResponse(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrAccountDisabled):
		sendErrorResponse(w, http.StatusConflict, "ACCOUNT_DISABLED", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		sendErrorResponse(w, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, domain.ErrLimitExceeded):
		sendErrorResponse(w, http.StatusUnprocessableEntity, "LIMIT_EXCEEDED", err.Error())
	default:
		slog.Error("request failed", "error", err)
		sendErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}

// sendErrorResponse sends an error response in the expected format.
func sendErrorResponse(w http.ResponseWriter, statusCode int, code, description string) {
	writeJSON(w, statusCode, ErrorResponse{
		Code:        code,
		Description: description,
		ID:          uuid.New(),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
