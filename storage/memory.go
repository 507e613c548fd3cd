// storage/memory.go

package storage

import (
	"context"
	"fmt"
	"sync"

	"bankist/model"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

// MemoryStore implements the Store interface with accounts held in process memory.
// A single mutex serialises every action so each one runs to completion before the next starts.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	order    []string
}

// NewMemoryStore creates a store holding copies of accounts, kept in the given order.
// It fails if two accounts share a username.
func NewMemoryStore(accounts []model.Account) (*MemoryStore, error) {
	s := &MemoryStore{
		accounts: make(map[string]*model.Account, len(accounts)),
		order:    make([]string, 0, len(accounts)),
	}
	for i := range accounts {
		acc := accounts[i].Clone()
		if _, exists := s.accounts[acc.Username]; exists {
			return nil, fmt.Errorf("%w: %q (%s)", ErrDuplicateUsername, acc.Username, acc.Owner)
		}
		s.accounts[acc.Username] = &acc
		s.order = append(s.order, acc.Username)
	}
	return s, nil
}

// Authenticate returns a copy of the account when both username and pin match.
func (s *MemoryStore) Authenticate(ctx context.Context, username string, pin int) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := model.Authenticate(s.active(), username, pin)
	if acc == nil {
		return nil, ErrInvalidCredentials
	}
	c := acc.Clone()
	return &c, nil
}

// active returns the live accounts in seed order. It must be called with mu held.
func (s *MemoryStore) active() []*model.Account {
	out := make([]*model.Account, 0, len(s.order))
	for _, username := range s.order {
		out = append(out, s.accounts[username])
	}
	return out
}

// GetAccount retrieves a copy of a single account by its username.
func (s *MemoryStore) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	c := acc.Clone()
	return &c, nil
}

// ListAccounts returns copies of all active accounts in seed order.
func (s *MemoryStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Account, 0, len(s.order))
	for _, acc := range s.active() {
		out = append(out, acc.Clone())
	}
	return out, nil
}

// Transfer moves req.Amount from req.From to req.To.
// Every check runs before either ledger is touched, so both entries are written or neither is.
func (s *MemoryStore) Transfer(ctx context.Context, req model.TransferRequest) error {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[req.From]
	if !ok {
		return ErrNotFound
	}
	recipient, ok := s.accounts[req.To]
	if !ok {
		return fmt.Errorf("%w: %q does not exist", ErrInvalidRecipient, req.To)
	}
	if recipient == sender {
		return fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidRecipient)
	}
	if sender.Balance().LessThan(req.Amount) {
		return ErrInsufficientFunds
	}

	sender.Append(req.Amount.Neg())
	recipient.Append(req.Amount)

	log.Debug("transfer applied", "from", req.From, "to", req.To, "amount", req.Amount.String())
	return nil
}

// GrantLoan credits amount to the account when one of its transactions covers 10% of it.
func (s *MemoryStore) GrantLoan(ctx context.Context, username string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrNotFound
	}
	if !acc.QualifiesForLoan(amount) {
		return ErrLoanConditionNotMet
	}

	acc.Append(amount)
	log.Debug("loan granted", "username", username, "amount", amount.String())
	return nil
}

// CloseAccount removes the account for good once its pin is confirmed.
func (s *MemoryStore) CloseAccount(ctx context.Context, username string, pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrNotFound
	}
	if acc.Pin != pin {
		return ErrInvalidCloseCredentials
	}

	delete(s.accounts, username)
	for i, u := range s.order {
		if u == username {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	log.Debug("account closed", "username", username)
	return nil
}
