package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/model"
)

const maxDescriptionWidth = 32

// RenderStatistics summarizes a document's statistics.
func RenderStatistics(stats model.CoffeeStatistics) string {
	shop := stats.MostFrequentShop
	if shop == "" {
		shop = "-"
	}

	lines := []string{
		fmt.Sprintf("%s %s", BoldStyle.Render("Total purchases:"), strconv.Itoa(stats.TotalPurchases)),
		fmt.Sprintf("%s ¥%.2f", BoldStyle.Render("Total spending: "), stats.TotalSpending),
		fmt.Sprintf("%s %.1f", BoldStyle.Render("Per month:      "), stats.AveragePerMonth),
		fmt.Sprintf("%s %.1f", BoldStyle.Render("Per week:       "), stats.AveragePerWeek),
		fmt.Sprintf("%s %s", BoldStyle.Render("Favourite shop: "), shop),
	}

	if len(stats.PurchaseFrequency) > 0 {
		months := make([]string, 0, len(stats.PurchaseFrequency))
		for m := range stats.PurchaseFrequency {
			months = append(months, m)
		}
		sort.Strings(months)

		lines = append(lines, "", BoldStyle.Render("By month:"))
		peak := 0
		for _, m := range months {
			peak = max(peak, stats.PurchaseFrequency[m])
		}
		for _, m := range months {
			n := stats.PurchaseFrequency[m]
			lines = append(lines, fmt.Sprintf("  %s %s %d", m, bar(n, peak, 24), n))
		}
	}

	return RenderBox(ChartIcon+" Coffee statistics", strings.Join(lines, "\n"))
}

func bar(n, peak, width int) string {
	if peak == 0 {
		return ""
	}
	filled := n * width / peak
	if n > 0 && filled == 0 {
		filled = 1
	}
	return InfoStyle.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", width-filled)
}

// RenderTransactions lists coffee purchases as a table.
func RenderTransactions(txns []model.CoffeeTransaction, display *classification.Display) string {
	if len(txns) == 0 {
		return FormatInfo("No matching coffee purchases.")
	}

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		kind := CoffeeIcon
		switch {
		case txn.IsBeans:
			kind = BeanIcon
		case display.IsEquipment(txn):
			kind = "⚙"
		}
		if txn.IsConfirmed != nil && *txn.IsConfirmed {
			kind += SuccessIcon
		}

		rows = append(rows, []string{
			txn.Date + " " + txn.Time,
			kind,
			truncate(display.CafeName(txn.Transaction), 24),
			truncate(txn.Description, maxDescriptionWidth),
			fmt.Sprintf("%.2f", txn.Amount),
			fmt.Sprintf("%.2f", txn.Confidence),
			shortID(txn.ID),
		})
	}

	headers := []string{"WHEN", "", "CAFE", "ITEM", "AMOUNT", "CONF", "ID"}
	return renderTable(headers, rows, 4, 5)
}

// RenderNames lists names one per line under a title.
func RenderNames(title string, names []string) string {
	if len(names) == 0 {
		return FormatInfo("Nothing to list.")
	}
	var b strings.Builder
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")
	for i, n := range names {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, n)
	}
	return b.String()
}

// shortID is the prefix the confirm command accepts.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
