// Package seed supplies the accounts the bank starts with.
package seed

import (
	"context"

	"bankist/model"

	"github.com/shopspring/decimal"
)

// Source loads the initial set of accounts.
type Source interface {
	Accounts(ctx context.Context) ([]model.Account, error)
}

// Static is the built-in set of demo accounts.
type Static struct{}

// Accounts returns fresh copies of the four demo accounts on every call.
func (Static) Accounts(ctx context.Context) ([]model.Account, error) {
	return DefaultAccounts(), nil
}

// DefaultAccounts returns the four demo accounts.
func DefaultAccounts() []model.Account {
	return []model.Account{
		model.NewAccount("Gabby Diaz", 1111, amount("1.2"),
			amounts("200.75", "450", "-400", "3000.5", "-650", "-130", "70", "1300")...),
		model.NewAccount("Dre Govender", 2222, amount("1.5"),
			amounts("5000.25", "3400", "-150", "-790.75", "-3210", "-1000", "8500", "-30")...),
		model.NewAccount("Darek Doroszko", 3333, amount("0.7"),
			amounts("200", "-200", "340.15", "-300", "-20", "50", "400.75", "-460")...),
		model.NewAccount("Sarah Lynn Correia", 4444, amount("1"),
			amounts("430.89", "1000", "700.5", "50", "90")...),
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = amount(v)
	}
	return out
}
