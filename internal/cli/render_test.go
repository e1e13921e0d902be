package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/model"
)

func coffee(date, merchant, desc string, amount float64, beans bool) model.CoffeeTransaction {
	return model.CoffeeTransaction{
		Transaction: model.Transaction{
			ID:          "abcdef0123456789",
			Date:        date,
			Time:        "09:00:00",
			Merchant:    merchant,
			Description: desc,
			Amount:      amount,
		},
		MatchedKeywords: []string{"coffee"},
		Confidence:      0.8,
		IsCoffee:        true,
		IsBeans:         beans,
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, time.March, m.Month())
	assert.Equal(t, 2025, m.Year())

	_, err = ParseMonth("March")
	assert.Error(t, err)
}

func TestRenderCalendar(t *testing.T) {
	month, err := ParseMonth("2025-03")
	require.NoError(t, err)

	byDate := model.CoffeeDataByDate{
		"2025-03-03": {coffee("2025-03-03", "Manner", "拿铁", 20, false), coffee("2025-03-03", "Manner", "美式", 15, false)},
		"2025-03-20": {coffee("2025-03-20", "白鲸咖啡", "咖啡豆", 88, true)},
		"2025-04-01": {coffee("2025-04-01", "Manner", "拿铁", 20, false)},
	}

	out := RenderCalendar(month, byDate)

	assert.Contains(t, out, "March 2025")
	assert.Contains(t, out, "Mo")
	assert.Contains(t, out, " 3×2")
	assert.Contains(t, out, "20×1")
	assert.Contains(t, out, "31")
	assert.NotContains(t, out, "32")
	assert.Contains(t, out, "3 coffee purchases this month")
}

func TestRenderReceipt(t *testing.T) {
	data := model.ReceiptData{
		Monthly:          map[string]int{"JAN": 3, "FEB": 0, "MAR": 12},
		ReceiptID:        "abc123def456",
		GeneratedDate:    "2025/03/31",
		TopShops:         []model.NameCount{{Name: "Manner", Count: 10}, {Name: "星巴克", Count: 4}},
		TopBeanMerchants: []model.NameCount{{Name: "白鲸咖啡", Count: 2}},
		Total:            16,
	}

	out := RenderReceipt(data)

	for _, want := range []string{"COFFEE DIARY", "RECEIPT #ABC123DEF456", "2025/03/31", "JAN", "DEC", "TOP SHOPS", "Manner", "x10", "星巴克", "TOP BEANS", "白鲸咖啡", "TOTAL", "16"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderReceipt_NoBeans(t *testing.T) {
	out := RenderReceipt(model.ReceiptData{Monthly: map[string]int{}, ReceiptID: "x"})
	assert.NotContains(t, out, "TOP BEANS")
	assert.NotContains(t, out, "TOP SHOPS")
}

func TestRenderStatistics(t *testing.T) {
	out := RenderStatistics(model.CoffeeStatistics{
		PurchaseFrequency: map[string]int{"2025-02": 4, "2025-01": 8},
		MostFrequentShop:  "Manner",
		TotalPurchases:    12,
		TotalSpending:     240.5,
		AveragePerMonth:   6,
		AveragePerWeek:    6 / 4.33,
	})

	assert.Contains(t, out, "12")
	assert.Contains(t, out, "¥240.50")
	assert.Contains(t, out, "Manner")
	assert.Less(t, strings.Index(out, "2025-01"), strings.Index(out, "2025-02"))
}

func TestRenderTransactions(t *testing.T) {
	display := classification.NewDisplay(classification.DefaultVocabulary())

	assert.Contains(t, RenderTransactions(nil, display), "No matching")

	out := RenderTransactions([]model.CoffeeTransaction{
		coffee("2025-03-03", "Manner Coffee", "拿铁", 20, false),
		coffee("2025-03-04", "白鲸咖啡", "耶加雪菲 咖啡豆 200g", 88, true),
	}, display)

	assert.Contains(t, out, "Manner Coffee")
	assert.Contains(t, out, "白鲸咖啡")
	assert.Contains(t, out, "88.00")
	assert.Contains(t, out, "abcdef012345")
	assert.NotContains(t, out, "abcdef0123456789")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	// CJK runes are two cells wide.
	assert.Equal(t, "咖啡…", truncate("咖啡豆子咖啡", 5))
}
