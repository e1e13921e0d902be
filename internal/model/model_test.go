package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want TransactionType
	}{
		{in: "支出", want: TypeOutgoing},
		{in: " 支出 ", want: TypeOutgoing},
		{in: "收入", want: TypeIncoming},
		{in: "收入/支出", want: TypeMixed},
		{in: "/", want: TypeUnknown},
		{in: "", want: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTransactionType(tt.in))
		})
	}
}

func TestTransaction_Month(t *testing.T) {
	assert.Equal(t, "2025-03", (&Transaction{Date: "2025-03-14"}).Month())
	assert.Equal(t, "2025", (&Transaction{Date: "2025"}).Month())
}

func TestTransaction_GenerateHash(t *testing.T) {
	a := Transaction{Source: SourceAlipay, Date: "2025-03-14", Time: "08:00:00", Amount: 20, Merchant: "Manner"}
	b := a

	assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	assert.Len(t, a.GenerateHash(), 64)

	b.Time = "08:00:01"
	assert.NotEqual(t, a.GenerateHash(), b.GenerateHash())

	// The provider order number does not feed the hash.
	c := a
	c.TransactionID = "2025031422001"
	assert.Equal(t, a.GenerateHash(), c.GenerateHash())
}

func TestCoffeeDataByDate_Count(t *testing.T) {
	d := CoffeeDataByDate{
		"2025-03-01": make([]CoffeeTransaction, 2),
		"2025-03-02": make([]CoffeeTransaction, 1),
	}
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 0, CoffeeDataByDate(nil).Count())
}
