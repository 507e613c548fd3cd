// storage/store.go

package storage

import (
	"context"
	"errors"

	"bankist/model"

	"github.com/shopspring/decimal"
)

// Custom errors for the storage layer. None of them leave the store modified.
var (
	ErrNotFound                = errors.New("account not found")
	ErrDuplicateUsername       = errors.New("duplicate username")
	ErrInvalidCredentials      = errors.New("invalid username or pin")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidRecipient        = errors.New("invalid recipient")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrLoanConditionNotMet     = errors.New("no transaction covers 10% of the requested loan")
	ErrInvalidCloseCredentials = errors.New("close credentials do not match the account")
)

// Store defines the operations on the collection of active accounts.
type Store interface {
	Authenticate(ctx context.Context, username string, pin int) (*model.Account, error)
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	Transfer(ctx context.Context, req model.TransferRequest) error
	GrantLoan(ctx context.Context, username string, amount decimal.Decimal) error
	CloseAccount(ctx context.Context, username string, pin int) error
}
