package model

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Package model defines the accounts and ledger rows of the bank.

// Every amount is a decimal.Decimal, never a float64. The seeded ledgers hold values like 200.75 and 3000.5,
// and summing those as floats drifts (0.1 + 0.2 != 0.3). Balances, summaries and interest are all sums,
// so the drift would show up directly in what the client sees.

// Account is a bank account with its full transaction history.
// Positive transactions are deposits, negative ones are withdrawals.
// The slice order is the chronological order.
type Account struct {
	Owner        string            `json:"owner"`
	Username     string            `json:"username"`
	Pin          int               `json:"-"`
	InterestRate decimal.Decimal   `json:"interest_rate"`
	Transactions []decimal.Decimal `json:"transactions"`
}

// NewAccount builds an account and derives its username from owner.
// The username is derived once and never recomputed.
func NewAccount(owner string, pin int, interestRate decimal.Decimal, transactions ...decimal.Decimal) Account {
	txs := make([]decimal.Decimal, len(transactions))
	copy(txs, transactions)
	return Account{
		Owner:        owner,
		Username:     DeriveUsername(owner),
		Pin:          pin,
		InterestRate: interestRate,
		Transactions: txs,
	}
}

// DeriveUsername lowercases owner, splits it on single spaces and joins the first letter of every word.
// "Gabby Diaz" becomes "gd". Empty words (from repeated spaces) add nothing.
func DeriveUsername(owner string) string {
	var b strings.Builder
	for _, word := range strings.Split(strings.ToLower(owner), " ") {
		if word == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}

// FirstName returns the first space separated word of the owner name.
func (a *Account) FirstName() string {
	first, _, _ := strings.Cut(a.Owner, " ")
	return first
}

// Clone returns a deep copy so callers can read an account without sharing its ledger.
func (a *Account) Clone() Account {
	c := *a
	c.Transactions = make([]decimal.Decimal, len(a.Transactions))
	copy(c.Transactions, a.Transactions)
	return c
}

// LoginRequest defines the expected JSON body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Pin      int    `json:"pin"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	Welcome   string    `json:"welcome"`
	Statement Statement `json:"statement"`
}

// TransferRequest describes a transfer between two accounts identified by username.
// From is filled in from the session, never from the request body.
type TransferRequest struct {
	From   string          `json:"-"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// LoanRequest defines the expected JSON body for requesting a loan.
type LoanRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CloseAccountRequest defines the expected JSON body for closing the logged-in account.
type CloseAccountRequest struct {
	Username string `json:"username"`
	Pin      int    `json:"pin"`
}

// AccountListing is the public view of an account in the recipient directory.
type AccountListing struct {
	Owner    string `json:"owner"`
	Username string `json:"username"`
}
