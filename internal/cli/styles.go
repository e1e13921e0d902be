// Package cli renders coffee diary output for the terminal using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Roast palette.
var (
	PrimaryColor = lipgloss.Color("#C8873A") // crema
	MilkColor    = lipgloss.Color("#D9C5A0") // latte
	BeanColor    = lipgloss.Color("#6F4E37") // roasted bean
	SubtleColor  = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")

	successColor = lipgloss.Color("#7FB069")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
)

var (
	// TitleStyle heads each report section.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	// PromptStyle is used for questions and highlighted counts.
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	// InfoStyle draws frequency bars and informational lines.
	InfoStyle   = lipgloss.NewStyle().Foreground(MilkColor)
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle   = lipgloss.NewStyle().Bold(true)
	// BeanStyle highlights bean purchases.
	BeanStyle = lipgloss.NewStyle().Bold(true).Foreground(BeanColor)

	// BoxStyle frames statistics and review cards.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// ReceiptStyle is the narrow box the receipt prints in.
	ReceiptStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(BorderColor)

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	CoffeeIcon  = "☕"
	BeanIcon    = "🫘"
	ChartIcon   = "📊"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render(SuccessIcon + " " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return warningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the coffee icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CoffeeIcon + " " + title)
}

// FormatPrompt formats an answer prompt.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content under an unmargined title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
