package model

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Movement types.
const (
	MovementDeposit    = "deposit"
	MovementWithdrawal = "withdrawal"
)

var (
	hundred = decimal.NewFromInt(100)

	// Interest credits below one currency unit are dropped per deposit.
	minInterestCredit = decimal.NewFromInt(1)

	// A loan needs one transaction worth at least 10% of the requested amount.
	loanCoverRatio = decimal.New(1, -1)
)

// Movement is one rendered row of the ledger.
type Movement struct {
	Number  int             `json:"number"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

// Summary holds the values derived from a ledger.
type Summary struct {
	Balance  decimal.Decimal `json:"balance"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Interest decimal.Decimal `json:"interest"`
}

// SummaryDisplay is Summary formatted for display.
type SummaryDisplay struct {
	Balance  string `json:"balance"`
	Income   string `json:"income"`
	Expense  string `json:"expense"`
	Interest string `json:"interest"`
}

// Statement is everything a client needs to render an account.
type Statement struct {
	Owner     string         `json:"owner"`
	Username  string         `json:"username"`
	Sorted    bool           `json:"sorted"`
	Movements []Movement     `json:"movements"`
	Summary   Summary        `json:"summary"`
	Display   SummaryDisplay `json:"display"`
}

// Balance is the sum of all transactions. It is recomputed on every call.
func (a *Account) Balance() decimal.Decimal {
	return decimal.Sum(decimal.Zero, a.Transactions...)
}

// Income is the sum of all deposits.
func (a *Account) Income() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range a.Transactions {
		if tx.IsPositive() {
			total = total.Add(tx)
		}
	}
	return total
}

// Expense is the sum of the absolute values of all withdrawals.
func (a *Account) Expense() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range a.Transactions {
		if tx.IsNegative() {
			total = total.Add(tx.Abs())
		}
	}
	return total
}

// Interest credits InterestRate percent of every deposit.
// Each credit is checked on its own: a deposit whose credit is below one unit earns nothing,
// regardless of the total.
func (a *Account) Interest() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range a.Transactions {
		if !tx.IsPositive() {
			continue
		}
		credit := tx.Mul(a.InterestRate).Div(hundred)
		if credit.LessThan(minInterestCredit) {
			continue
		}
		total = total.Add(credit)
	}
	return total
}

// Append adds amount to the end of the ledger. It does not validate anything.
func (a *Account) Append(amount decimal.Decimal) {
	a.Transactions = append(a.Transactions, amount)
}

// QualifiesForLoan reports whether a loan of amount may be granted.
// Any transaction counts towards the 10% rule, withdrawals included.
func (a *Account) QualifiesForLoan(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	threshold := amount.Mul(loanCoverRatio)
	for _, tx := range a.Transactions {
		if tx.GreaterThanOrEqual(threshold) {
			return true
		}
	}
	return false
}

// Summary computes every derived value of the ledger.
func (a *Account) Summary() Summary {
	return Summary{
		Balance:  a.Balance(),
		Income:   a.Income(),
		Expense:  a.Expense(),
		Interest: a.Interest(),
	}
}

// Movements returns the ledger as display rows. When sorted is true the rows are ordered by ascending
// amount and numbered by their sorted position. The account's own ledger is never reordered.
func (a *Account) Movements(sorted bool) []Movement {
	txs := a.Transactions
	if sorted {
		txs = make([]decimal.Decimal, len(a.Transactions))
		copy(txs, a.Transactions)
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].LessThan(txs[j]) })
	}

	rows := make([]Movement, 0, len(txs))
	for i, tx := range txs {
		kind := MovementWithdrawal
		if tx.IsPositive() {
			kind = MovementDeposit
		}
		rows = append(rows, Movement{
			Number:  i + 1,
			Type:    kind,
			Amount:  tx,
			Display: FormatAmount(tx),
		})
	}
	return rows
}

// Statement renders the account with its movements and summary.
func (a *Account) Statement(sorted bool) Statement {
	sum := a.Summary()
	return Statement{
		Owner:     a.Owner,
		Username:  a.Username,
		Sorted:    sorted,
		Movements: a.Movements(sorted),
		Summary:   sum,
		Display: SummaryDisplay{
			Balance:  FormatAmount(sum.Balance),
			Income:   FormatAmount(sum.Income),
			Expense:  FormatAmount(sum.Expense),
			Interest: FormatAmount(sum.Interest),
		},
	}
}

// Authenticate finds the account with username and checks its pin.
// It returns nil when the username is unknown or the pin differs.
func Authenticate(accounts []*Account, username string, pin int) *Account {
	for _, acc := range accounts {
		if acc.Username != username {
			continue
		}
		if acc.Pin != pin {
			return nil
		}
		return acc
	}
	return nil
}

// FormatAmount renders d as currency with thousands separators and at most two decimals,
// e.g. "$1,300", "$200.75" or "-$400".
// The sign is taken after rounding, so amounts that round to zero print as "$0".
func FormatAmount(d decimal.Decimal) string {
	rounded := d.Round(2)
	prefix := "$"
	if rounded.IsNegative() {
		prefix = "-$"
	}
	rounded = rounded.Abs()

	out := humanize.BigComma(rounded.BigInt())
	if _, frac, ok := strings.Cut(rounded.String(), "."); ok {
		out += "." + frac
	}
	return prefix + out
}
