package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/aggregate"
	"github.com/Veraticus/coffee-diary/internal/model"
)

const receiptWidth = 32

// RenderReceipt prints receipt data as a till receipt.
func RenderReceipt(data model.ReceiptData) string {
	rule := SubtleStyle.Render(strings.Repeat("-", receiptWidth))

	var b strings.Builder
	line := func(left, right string) {
		b.WriteString(padRight(truncate(left, receiptWidth-len(right)-1), receiptWidth-len(right)))
		b.WriteString(right)
		b.WriteString("\n")
	}
	center := func(s string) {
		pad := (receiptWidth - len(s)) / 2
		b.WriteString(strings.Repeat(" ", max(pad, 0)))
		b.WriteString(s)
		b.WriteString("\n")
	}

	center("COFFEE DIARY")
	center("RECEIPT #" + strings.ToUpper(data.ReceiptID))
	center(data.GeneratedDate)
	b.WriteString(rule + "\n")

	for _, label := range aggregate.MonthLabels {
		line(label, strconv.Itoa(data.Monthly[label]))
	}
	b.WriteString(rule + "\n")

	section := func(title string, items []model.NameCount) {
		if len(items) == 0 {
			return
		}
		b.WriteString(BoldStyle.Render(title) + "\n")
		for i, item := range items {
			line(fmt.Sprintf("%2d %s", i+1, item.Name), "x"+strconv.Itoa(item.Count))
		}
		b.WriteString(rule + "\n")
	}
	section("TOP SHOPS", data.TopShops)
	section("TOP BEANS", data.TopBeanMerchants)

	line(BoldStyle.Render("TOTAL"), strconv.Itoa(data.Total))
	center("THANK YOU")

	return ReceiptStyle.Render(strings.TrimRight(b.String(), "\n"))
}
