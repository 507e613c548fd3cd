package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankist/model"
	"bankist/storage"

	"github.com/charmbracelet/log"
)

// TransactionHandler holds dependencies for transaction-related handlers.
type TransactionHandler struct {
	store storage.Store
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(store storage.Store) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// CreateTransferHandler moves money from the logged-in account to another account.
// Both ledger entries are written together or not at all.
//
// Method: POST
// Path: /transfers
// Success: 200 OK with the sender's statement
// Error: 400 Bad Request (for invalid JSON, non-positive amount or self transfer)
// Error: 401 Unauthorized (no session)
// Error: 404 Not Found (unknown recipient)
// Error: 422 Unprocessable Entity (insufficient funds)
// Error: 500 Internal Server Error
func (h *TransactionHandler) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.From = s.Username

	// Validation
	if !req.Amount.IsPositive() {
		http.Error(w, "Transfer amount must be positive", http.StatusBadRequest)
		return
	}
	if req.To == req.From {
		http.Error(w, "Cannot transfer to your own account", http.StatusBadRequest)
		return
	}

	if err := h.store.Transfer(r.Context(), req); err != nil {
		log.Warn("transfer rejected", "from", req.From, "to", req.To, "err", err)
		switch {
		case errors.Is(err, storage.ErrInsufficientFunds):
			http.Error(w, "Insufficient funds", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrInvalidRecipient):
			http.Error(w, "Recipient account not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrInvalidAmount):
			http.Error(w, "Transfer amount must be positive", http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to process transfer", http.StatusInternalServerError)
		}
		return
	}

	writeStatement(w, r, h.store, s)
}

// CreateLoanHandler grants a loan to the logged-in account.
// A loan is granted only if one existing transaction is at least 10% of the requested amount.
//
// Method: POST
// Path: /loans
// Success: 200 OK with the updated statement
// Error: 400 Bad Request (for invalid JSON or non-positive amount)
// Error: 401 Unauthorized (no session)
// Error: 422 Unprocessable Entity (loan condition not met)
func (h *TransactionHandler) CreateLoanHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req model.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		http.Error(w, "Loan amount must be positive", http.StatusBadRequest)
		return
	}

	if err := h.store.GrantLoan(r.Context(), s.Username, req.Amount); err != nil {
		log.Warn("loan rejected", "username", s.Username, "amount", req.Amount.String(), "err", err)
		switch {
		case errors.Is(err, storage.ErrLoanConditionNotMet):
			http.Error(w, "Loan condition not met", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrInvalidAmount):
			http.Error(w, "Loan amount must be positive", http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to process loan", http.StatusInternalServerError)
		}
		return
	}

	writeStatement(w, r, h.store, s)
}
