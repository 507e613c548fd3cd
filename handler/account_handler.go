package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankist/model"
	"bankist/session"
	"bankist/storage"

	"github.com/charmbracelet/log"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	store    storage.Store
	sessions *session.Manager
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(store storage.Store, sessions *session.Manager) *AccountHandler {
	return &AccountHandler{store: store, sessions: sessions}
}

// ListAccountsHandler lists the owners and usernames of all active accounts.
//
// Method: GET
// Path: /accounts
// Success: 200 OK
func (h *AccountHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		log.Error("error listing accounts", "err", err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	out := make([]model.AccountListing, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, model.AccountListing{Owner: acc.Owner, Username: acc.Username})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetStatementHandler returns the statement of the logged-in account in the session's sort mode.
//
// Method: GET
// Path: /account
// Success: 200 OK
// Error: 401 Unauthorized (no session)
// Error: 404 Not Found (account closed)
func (h *AccountHandler) GetStatementHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}
	writeStatement(w, r, h.store, s)
}

// ToggleSortHandler flips between insertion order and ascending amount order.
//
// Method: POST
// Path: /account/sort
// Success: 200 OK with the re-rendered statement
// Error: 401 Unauthorized (no session)
func (h *AccountHandler) ToggleSortHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	s, err := h.sessions.ToggleSort(s.Token)
	if err != nil {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}
	writeStatement(w, r, h.store, s)
}

// CloseAccountHandler deletes the logged-in account after re-checking its username and pin.
// Every session of the account ends with it.
//
// Method: POST
// Path: /account/close
// Success: 204 No Content
// Error: 400 Bad Request (for invalid JSON)
// Error: 401 Unauthorized (no session)
// Error: 403 Forbidden (credentials do not match the logged-in account)
// Error: 404 Not Found (account already closed)
func (h *AccountHandler) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req model.CloseAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username != s.Username {
		http.Error(w, "Credentials do not match the logged-in account", http.StatusForbidden)
		return
	}

	if err := h.store.CloseAccount(r.Context(), s.Username, req.Pin); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidCloseCredentials):
			http.Error(w, "Credentials do not match the logged-in account", http.StatusForbidden)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		default:
			log.Error("error closing account", "err", err)
			http.Error(w, "Failed to close account", http.StatusInternalServerError)
		}
		return
	}

	revoked := h.sessions.RevokeUser(s.Username)
	log.Info("account closed", "username", s.Username, "sessions_revoked", revoked)
	w.WriteHeader(http.StatusNoContent)
}

// writeStatement re-reads the account and renders it. The statement is never cached between requests.
func writeStatement(w http.ResponseWriter, r *http.Request, store storage.Store, s session.Session) {
	acc, err := store.GetAccount(r.Context(), s.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
		} else {
			log.Error("error getting account", "err", err)
			http.Error(w, "Failed to retrieve account", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, acc.Statement(s.Sorted))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error writing JSON response", "err", err)
	}
}
