package aggregate

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coffee-diary/internal/model"
)

func TestReceiptBuilder_Build(t *testing.T) {
	b := &ReceiptBuilder{
		Now:   func() time.Time { return time.Date(2025, time.December, 31, 20, 0, 0, 0, time.UTC) },
		NewID: func() string { return "abc123def456" },
	}

	beans := purchase("2025-02-10", "10:00:00", "白鲸", 88)
	beans.IsBeans = true

	txns := []model.CoffeeTransaction{
		purchase("2025-01-02", "09:00:00", "Seesaw", 30),
		purchase("2025-01-03", "09:00:00", "Manner", 15),
		purchase("2025-01-04", "09:00:00", "Manner", 15),
		purchase("2025-03-04", "09:00:00", "", 20),
		purchase("2025-12-24", "09:00:00", "Seesaw", 30),
		purchase("2025-12-25", "09:00:00", "Arabica", 30),
		beans,
	}

	got := b.Build(txns)

	assert.Equal(t, 7, got.Total)
	assert.Equal(t, "abc123def456", got.ReceiptID)
	assert.Equal(t, "2025/12/31", got.GeneratedDate)

	require.Len(t, got.Monthly, 12)
	assert.Equal(t, 3, got.Monthly["JAN"])
	assert.Equal(t, 1, got.Monthly["FEB"])
	assert.Equal(t, 1, got.Monthly["MAR"])
	assert.Equal(t, 0, got.Monthly["JUL"])
	assert.Equal(t, 2, got.Monthly["DEC"])

	assert.Equal(t, []model.NameCount{
		{Name: "Seesaw", Count: 2},
		{Name: "Manner", Count: 2},
		{Name: UnknownMerchant, Count: 1},
		{Name: "Arabica", Count: 1},
	}, got.TopShops)
	assert.Equal(t, []model.NameCount{{Name: "白鲸", Count: 1}}, got.TopBeanMerchants)
}

func TestReceiptBuilder_TopTen(t *testing.T) {
	b := &ReceiptBuilder{Now: time.Now, NewID: func() string { return "x" }}

	var txns []model.CoffeeTransaction
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			txns = append(txns, purchase("2025-06-01", "09:00:00", fmt.Sprintf("shop-%02d", i), 10))
		}
	}

	got := b.Build(txns)
	require.Len(t, got.TopShops, ReceiptTopN)
	assert.Equal(t, "shop-14", got.TopShops[0].Name)
	assert.Equal(t, 15, got.TopShops[0].Count)
	assert.Equal(t, "shop-05", got.TopShops[9].Name)
	assert.Empty(t, got.TopBeanMerchants)
}

func TestReceipt_Empty(t *testing.T) {
	got := Receipt(nil)

	assert.Equal(t, 0, got.Total)
	assert.Len(t, got.Monthly, 12)
	assert.Empty(t, got.TopShops)
	assert.Empty(t, got.TopBeanMerchants)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), got.GeneratedDate)
}

func TestNewReceiptID(t *testing.T) {
	re := regexp.MustCompile(`^[a-z0-9]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewReceiptID()
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
