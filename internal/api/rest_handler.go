package api

import (
	"account_manager/internal/domain"
	"account_manager/internal/processor"
	"account_manager/internal/repository"
	"account_manager/pkg/crypto"
	"account_manager/pkg/validator"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type APIHandler struct {
	processor      *processor.AccountProcessor
	signer         *crypto.Signer
	validator      *validator.Validator
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	processor *processor.AccountProcessor,
	signer *crypto.Signer,
	logger *slog.Logger,
	requestTimeout time.Duration,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return &APIHandler{
		processor:      processor,
		signer:         signer,
		validator:      validator.New(),
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

type CreateAccountRequest struct {
	ID             string           `json:"id,omitempty" validate:"omitempty,account_id"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
}

type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type RateRequest struct {
	Rate *decimal.Decimal `json:"rate" validate:"required"`
}

type AccountResponse struct {
	ID             string          `json:"id"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
}

type ReceiptResponse struct {
	AccountID      string          `json:"account_id"`
	Operation      string          `json:"operation"`
	Amount         decimal.Decimal `json:"amount"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	Timestamp      int64           `json:"timestamp"`
	Signature      string          `json:"signature"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	balance := decimal.Zero
	if req.InitialBalance != nil {
		balance = *req.InitialBalance
	}

	snap, err := h.processor.OpenAccount(ctx, id, balance)
	if err != nil {
		h.sendProcessorError(w, err)
		return
	}

	h.sendJSON(w, accountResponse(snap), http.StatusCreated)
}

func (h *APIHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	snaps, err := h.processor.ListAccounts(ctx)
	if err != nil {
		h.sendProcessorError(w, err)
		return
	}

	out := make([]AccountResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, accountResponse(s))
	}
	h.sendJSON(w, out, http.StatusOK)
}

func (h *APIHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	snap, err := h.processor.GetAccount(ctx, r.PathValue("id"))
	if err != nil {
		h.sendProcessorError(w, err)
		return
	}

	h.sendJSON(w, accountResponse(snap), http.StatusOK)
}

func (h *APIHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.processor.CloseAccount(ctx, r.PathValue("id")); err != nil {
		h.sendProcessorError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.runOperation(w, r, func(ctx context.Context, id string) (processor.Result, error) {
		return h.processor.Deposit(ctx, id, *req.Amount)
	})
}

func (h *APIHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.runOperation(w, r, func(ctx context.Context, id string) (processor.Result, error) {
		return h.processor.Withdraw(ctx, id, *req.Amount)
	})
}

func (h *APIHandler) InterestHandler(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.runOperation(w, r, func(ctx context.Context, id string) (processor.Result, error) {
		return h.processor.ApplyInterest(ctx, id, *req.Rate)
	})
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return false
	}
	if err := h.validator.ValidateStruct(dst); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return false
	}
	return true
}

func (h *APIHandler) runOperation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string) (processor.Result, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	res, err := op(ctx, r.PathValue("id"))
	if err != nil {
		h.sendProcessorError(w, err)
		return
	}

	ts := res.AppliedAt.Unix()
	h.sendJSON(w, ReceiptResponse{
		AccountID:      res.Account.ID,
		Operation:      string(res.Operation),
		Amount:         res.Amount,
		Balance:        res.Account.Balance,
		TotalDeposited: res.Account.TotalDeposited,
		Timestamp:      ts,
		Signature:      h.signer.SignReceipt(res.Account.ID, string(res.Operation), res.Amount, res.Account.Balance, ts),
	}, http.StatusOK)
}

func (h *APIHandler) sendProcessorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		h.sendError(w, err.Error(), http.StatusBadRequest, "INVALID_AMOUNT")
	case errors.Is(err, domain.ErrInvalidRate):
		h.sendError(w, err.Error(), http.StatusBadRequest, "INVALID_RATE")
	case errors.Is(err, domain.ErrInsufficientFunds):
		h.sendError(w, err.Error(), http.StatusConflict, "INSUFFICIENT_FUNDS")
	case errors.Is(err, repository.ErrNotFound):
		h.sendError(w, err.Error(), http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, repository.ErrDuplicate):
		h.sendError(w, err.Error(), http.StatusConflict, "DUPLICATE")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.sendError(w, "Request timed out", http.StatusServiceUnavailable, "TIMEOUT")
	default:
		h.logger.Error("Account operation failed", slog.String("error", err.Error()))
		h.sendError(w, "Internal server error", http.StatusInternalServerError, "SERVER_ERROR")
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/accounts", h.CreateAccountHandler)
	mux.HandleFunc("GET /api/v1/accounts", h.ListAccountsHandler)
	mux.HandleFunc("GET /api/v1/accounts/{id}", h.GetAccountHandler)
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", h.DeleteAccountHandler)
	mux.HandleFunc("POST /api/v1/accounts/{id}/deposit", h.DepositHandler)
	mux.HandleFunc("POST /api/v1/accounts/{id}/withdraw", h.WithdrawHandler)
	mux.HandleFunc("POST /api/v1/accounts/{id}/interest", h.InterestHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}

func accountResponse(s processor.Snapshot) AccountResponse {
	return AccountResponse{
		ID:             s.ID,
		Balance:        s.Balance,
		TotalDeposited: s.TotalDeposited,
	}
}
