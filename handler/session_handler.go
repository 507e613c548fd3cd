package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bankist/model"
	"bankist/session"
	"bankist/storage"

	"github.com/charmbracelet/log"
)

type contextKey struct{}

// SessionHandler holds dependencies for logging in and guarding session routes.
type SessionHandler struct {
	store    storage.Store
	sessions *session.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(store storage.Store, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{store: store, sessions: sessions}
}

// LoginHandler checks a username/pin pair and opens a session.
// It expects a JSON body with "username" and "pin".
//
// Method: POST
// Path: /login
// Success: 200 OK with the session token and the account statement
// Error: 400 Bad Request (for invalid JSON)
// Error: 401 Unauthorized (for unknown username or wrong pin)
func (h *SessionHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	acc, err := h.store.Authenticate(r.Context(), req.Username, req.Pin)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			log.Warn("login rejected", "username", req.Username)
			http.Error(w, "Invalid username or pin", http.StatusUnauthorized)
		} else {
			log.Error("error authenticating", "err", err)
			http.Error(w, "Failed to log in", http.StatusInternalServerError)
		}
		return
	}

	s := h.sessions.Create(acc.Username)
	log.Info("login", "username", acc.Username)

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Token:     s.Token,
		Welcome:   "Welcome Back " + acc.FirstName() + "!",
		Statement: acc.Statement(s.Sorted),
	})
}

// RequireSession is a middleware that resolves the bearer token into a session.
// Requests without a live session are answered with 401.
func (h *SessionHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		s, err := h.sessions.Get(token)
		if err != nil {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func withSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session set by RequireSession.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(session.Session)
	return s, ok
}
