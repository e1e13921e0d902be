package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/coffee-diary/internal/model"
)

const calendarCellWidth = 6

var weekdayHeaders = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM: %w", s, err)
	}
	return t, nil
}

// RenderCalendar draws a Monday-first month grid with the number of coffee
// purchases on each day. Days with a bean purchase are highlighted.
func RenderCalendar(month time.Time, byDate model.CoffeeDataByDate) string {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	cell := lipgloss.NewStyle().Width(calendarCellWidth)

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s", CoffeeIcon, first.Format("January 2006"))))
	b.WriteString("\n")

	header := make([]string, len(weekdayHeaders))
	for i, h := range weekdayHeaders {
		header[i] = cell.Render(SubtleStyle.Render(h))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	total := 0
	row := make([]string, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, cell.Render(""))
	}

	for day := 1; day <= days; day++ {
		date := first.AddDate(0, 0, day-1).Format(time.DateOnly)
		txns := byDate[date]
		total += len(txns)

		row = append(row, cell.Render(dayCell(day, txns)))
		if len(row) == 7 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			b.WriteString("\n")
			row = row[:0]
		}
	}
	if len(row) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d coffee purchases this month", total)))
	b.WriteString("\n")

	return b.String()
}

func dayCell(day int, txns []model.CoffeeTransaction) string {
	label := fmt.Sprintf("%2d", day)
	if len(txns) == 0 {
		return SubtleStyle.Render(label)
	}

	count := fmt.Sprintf("%s×%d", label, len(txns))
	for _, txn := range txns {
		if txn.IsBeans {
			return BeanStyle.Render(count)
		}
	}
	return PromptStyle.Render(count)
}
