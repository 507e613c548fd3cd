package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, dec(v))
	}
	return out
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		owner string
		want  string
	}{
		{"Gabby Diaz", "gd"},
		{"Sarah Lynn Correia", "slc"},
		{"Dre Govender", "dg"},
		{"single", "s"},
		{"Double  Space", "ds"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.owner, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.owner))
		})
	}
}

func TestNewAccount(t *testing.T) {
	t.Run("derives username and copies the ledger", func(t *testing.T) {
		// Arrange
		seed := decs("200", "-50")

		// Act
		acc := NewAccount("Gabby Diaz", 1111, dec("1.2"), seed...)
		seed[0] = dec("999")

		// Assert
		assert.Equal(t, "gd", acc.Username)
		assert.Equal(t, "Gabby", acc.FirstName())
		assert.True(t, dec("200").Equal(acc.Transactions[0]))
	})

	t.Run("clone does not share the ledger", func(t *testing.T) {
		acc := NewAccount("Gabby Diaz", 1111, dec("1.2"), decs("100")...)
		c := acc.Clone()
		c.Append(dec("5"))

		assert.Len(t, acc.Transactions, 1)
		assert.Len(t, c.Transactions, 2)
	})
}

// TestAccountJSON checks that the pin never leaves the process.
func TestAccountJSON(t *testing.T) {
	acc := NewAccount("Gabby Diaz", 1111, dec("1.2"), decs("200.75", "-400")...)

	data, err := json.Marshal(acc)
	require.NoError(t, err)

	assert.JSONEq(t, `{"owner":"Gabby Diaz","username":"gd","interest_rate":"1.2","transactions":["200.75","-400"]}`, string(data))
	assert.NotContains(t, string(data), "1111")
}

func TestTransferRequestJSON(t *testing.T) {
	t.Run("sender is never read from the body", func(t *testing.T) {
		var req TransferRequest
		err := json.Unmarshal([]byte(`{"From":"dg","to":"gd","amount":"12.5"}`), &req)
		require.NoError(t, err)

		assert.Empty(t, req.From)
		assert.Equal(t, "gd", req.To)
		assert.True(t, dec("12.5").Equal(req.Amount))
	})

	t.Run("invalid amount", func(t *testing.T) {
		var req TransferRequest
		err := json.Unmarshal([]byte(`{"to":"gd","amount":"lots"}`), &req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't convert lots to decimal")
	})
}
