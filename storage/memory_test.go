// storage/memory_test.go
package storage

import (
	"context"
	"sync"
	"testing"

	"bankist/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestStore builds a store with two accounts: "gd" holding 500 and "dg" holding 100.
func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore([]model.Account{
		model.NewAccount("Gabby Diaz", 1111, dec("1.2"), dec("500")),
		model.NewAccount("Dre Govender", 2222, dec("1.5"), dec("100")),
	})
	require.NoError(t, err)
	return store
}

func balanceOf(t *testing.T, store *MemoryStore, username string) decimal.Decimal {
	t.Helper()
	acc, err := store.GetAccount(context.Background(), username)
	require.NoError(t, err)
	return acc.Balance()
}

func TestNewMemoryStore(t *testing.T) {
	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, err := NewMemoryStore([]model.Account{
			model.NewAccount("Gabby Diaz", 1111, dec("1")),
			model.NewAccount("Greg Dunn", 2222, dec("1")),
		})
		require.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("keeps seed order and copies the input", func(t *testing.T) {
		seed := []model.Account{
			model.NewAccount("Sarah Lynn Correia", 4444, dec("1"), dec("10")),
			model.NewAccount("Gabby Diaz", 1111, dec("1")),
		}
		store, err := NewMemoryStore(seed)
		require.NoError(t, err)
		seed[0].Append(dec("99"))

		accounts, err := store.ListAccounts(context.Background())
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "slc", accounts[0].Username)
		assert.Equal(t, "gd", accounts[1].Username)
		assert.Len(t, accounts[0].Transactions, 1)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc, err := store.Authenticate(ctx, "gd", 1111)
	require.NoError(t, err)
	assert.Equal(t, "Gabby Diaz", acc.Owner)

	_, err = store.Authenticate(ctx, "gd", 2222)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate(ctx, "nobody", 1111)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate(ctx, "GD", 1111)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "username match is exact")
}

func TestAuthenticateReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc, err := store.Authenticate(ctx, "dg", 2222)
	require.NoError(t, err)
	acc.Append(dec("1000"))

	assert.True(t, dec("100").Equal(balanceOf(t, store, "dg")))
}

func TestAuthenticateAfterClose(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CloseAccount(ctx, "dg", 2222))

	_, err := store.Authenticate(ctx, "dg", 2222)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	acc, err := store.Authenticate(ctx, "gd", 1111)
	require.NoError(t, err)
	assert.Equal(t, "gd", acc.Username)
}

func TestGetAccountReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc, err := store.GetAccount(ctx, "gd")
	require.NoError(t, err)
	acc.Append(dec("1000"))

	assert.True(t, dec("500").Equal(balanceOf(t, store, "gd")))

	_, err = store.GetAccount(ctx, "zz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("successful transfer", func(t *testing.T) {
		store := newTestStore(t)

		err := store.Transfer(ctx, model.TransferRequest{From: "gd", To: "dg", Amount: dec("200")})
		require.NoError(t, err)

		sender, err := store.GetAccount(ctx, "gd")
		require.NoError(t, err)
		assert.True(t, dec("-200").Equal(sender.Transactions[len(sender.Transactions)-1]))
		assert.True(t, dec("300").Equal(sender.Balance()))
		assert.True(t, dec("300").Equal(balanceOf(t, store, "dg")))
	})

	t.Run("whole balance may be sent", func(t *testing.T) {
		store := newTestStore(t)
		err := store.Transfer(ctx, model.TransferRequest{From: "dg", To: "gd", Amount: dec("100")})
		require.NoError(t, err)
		assert.True(t, balanceOf(t, store, "dg").IsZero())
	})

	failures := []struct {
		name    string
		req     model.TransferRequest
		wantErr error
	}{
		{"insufficient funds", model.TransferRequest{From: "dg", To: "gd", Amount: dec("100.01")}, ErrInsufficientFunds},
		{"zero amount", model.TransferRequest{From: "gd", To: "dg", Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", model.TransferRequest{From: "gd", To: "dg", Amount: dec("-5")}, ErrInvalidAmount},
		{"unknown recipient", model.TransferRequest{From: "gd", To: "zz", Amount: dec("5")}, ErrInvalidRecipient},
		{"self transfer", model.TransferRequest{From: "gd", To: "gd", Amount: dec("5")}, ErrInvalidRecipient},
		{"unknown sender", model.TransferRequest{From: "zz", To: "gd", Amount: dec("5")}, ErrNotFound},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			err := store.Transfer(ctx, tt.req)

			require.ErrorIs(t, err, tt.wantErr)
			gd, _ := store.GetAccount(ctx, "gd")
			dg, _ := store.GetAccount(ctx, "dg")
			assert.Len(t, gd.Transactions, 1, "sender ledger must be untouched")
			assert.Len(t, dg.Transactions, 1, "recipient ledger must be untouched")
		})
	}
}

// TestConcurrentTransfers checks that racing transfers can never overdraw the sender.
func TestConcurrentTransfers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Transfer(ctx, model.TransferRequest{From: "gd", To: "dg", Amount: dec("100")}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.True(t, balanceOf(t, store, "gd").IsZero())
	assert.True(t, dec("600").Equal(balanceOf(t, store, "dg")))
}

func TestGrantLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("granted when a transaction covers 10%", func(t *testing.T) {
		store, err := NewMemoryStore([]model.Account{
			model.NewAccount("Test Owner", 1, dec("1"), dec("50"), dec("10")),
		})
		require.NoError(t, err)

		require.NoError(t, store.GrantLoan(ctx, "to", dec("100")))

		acc, err := store.GetAccount(ctx, "to")
		require.NoError(t, err)
		require.Len(t, acc.Transactions, 3)
		assert.True(t, dec("100").Equal(acc.Transactions[2]))
	})

	t.Run("refused when nothing covers 10%", func(t *testing.T) {
		store := newTestStore(t)
		err := store.GrantLoan(ctx, "dg", dec("1001"))
		require.ErrorIs(t, err, ErrLoanConditionNotMet)
		assert.True(t, dec("100").Equal(balanceOf(t, store, "dg")))
	})

	t.Run("invalid amount", func(t *testing.T) {
		store := newTestStore(t)
		assert.ErrorIs(t, store.GrantLoan(ctx, "gd", decimal.Zero), ErrInvalidAmount)
	})

	t.Run("unknown account", func(t *testing.T) {
		store := newTestStore(t)
		assert.ErrorIs(t, store.GrantLoan(ctx, "zz", dec("1")), ErrNotFound)
	})
}

func TestCloseAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the account", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.CloseAccount(ctx, "gd", 1111))

		_, err := store.GetAccount(ctx, "gd")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Authenticate(ctx, "gd", 1111)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		accounts, err := store.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "dg", accounts[0].Username)
	})

	t.Run("wrong pin keeps the account", func(t *testing.T) {
		store := newTestStore(t)

		err := store.CloseAccount(ctx, "gd", 2222)

		require.ErrorIs(t, err, ErrInvalidCloseCredentials)
		_, err = store.GetAccount(ctx, "gd")
		assert.NoError(t, err)
	})

	t.Run("transfers to a closed account fail", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CloseAccount(ctx, "dg", 2222))

		err := store.Transfer(ctx, model.TransferRequest{From: "gd", To: "dg", Amount: dec("1")})
		assert.ErrorIs(t, err, ErrInvalidRecipient)
	})
}
