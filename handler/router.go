package handler

import (
	"net/http"
	"time"

	"bankist/session"
	"bankist/storage"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// NewRouter wires every route of the bank API.
func NewRouter(store storage.Store, sessions *session.Manager) *mux.Router {
	sessionHandler := NewSessionHandler(store, sessions)
	accountHandler := NewAccountHandler(store, sessions)
	transactionHandler := NewTransactionHandler(store)

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/login", sessionHandler.LoginHandler).Methods("POST")
	r.HandleFunc("/accounts", accountHandler.ListAccountsHandler).Methods("GET")

	authed := r.NewRoute().Subrouter()
	authed.Use(sessionHandler.RequireSession)
	authed.HandleFunc("/account", accountHandler.GetStatementHandler).Methods("GET")
	authed.HandleFunc("/account/sort", accountHandler.ToggleSortHandler).Methods("POST")
	authed.HandleFunc("/account/close", accountHandler.CloseAccountHandler).Methods("POST")
	authed.HandleFunc("/transfers", transactionHandler.CreateTransferHandler).Methods("POST")
	authed.HandleFunc("/loans", transactionHandler.CreateLoanHandler).Methods("POST")

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}
