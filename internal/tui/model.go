// Package tui is the interactive coffee purchase browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// browseFilters is the order the filter key cycles through.
var browseFilters = []classification.Filter{
	classification.FilterAll,
	classification.FilterCafe,
	classification.FilterChain,
	classification.FilterBeans,
	classification.FilterManner,
}

const (
	chromeHeight  = 6
	minTableRows  = 5
	defaultHeight = 20
)

// Model is the bubbletea model for browsing and correcting purchases.
type Model struct {
	display   *classification.Display
	decisions map[string]model.Override
	now       func() time.Time
	table     table.Model
	all       []model.CoffeeTransaction
	visible   []model.CoffeeTransaction
	order     []string
	keys      KeyMap
	filterIdx int
	quitting  bool
}

func newModel(txns []model.CoffeeTransaction, display *classification.Display) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "When", Width: 19},
			{Title: "", Width: 3},
			{Title: "Cafe", Width: 22},
			{Title: "Item", Width: 28},
			{Title: "¥", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-chromeHeight),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(cli.PrimaryColor)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#1a1a1a")).Background(cli.PrimaryColor)
	t.SetStyles(styles)

	m := Model{
		display:   display,
		decisions: make(map[string]model.Override),
		now:       time.Now,
		table:     t,
		all:       txns,
		keys:      DefaultKeyMap(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-chromeHeight, minTableRows))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Filter):
			m.filterIdx = (m.filterIdx + 1) % len(browseFilters)
			m.refresh()
			m.table.SetCursor(0)
			return m, nil
		case key.Matches(msg, m.keys.Coffee):
			m.decide(true, false)
			return m, nil
		case key.Matches(msg, m.keys.Beans):
			m.decide(true, true)
			return m, nil
		case key.Matches(msg, m.keys.NotCoffee):
			m.decide(false, false)
			return m, nil
		case key.Matches(msg, m.keys.Undo):
			if txn, ok := m.selected(); ok {
				delete(m.decisions, txn.ID)
				m.refresh()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle(fmt.Sprintf("Coffee diary · %s (%d)", filterLabel(browseFilters[m.filterIdx]), len(m.visible))))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf("%d decisions pending", len(m.decisions))))
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

// Decisions returns the overrides chosen, in the order first made.
func (m Model) Decisions() []model.Override {
	out := make([]model.Override, 0, len(m.decisions))
	for _, id := range m.order {
		if o, ok := m.decisions[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

func (m *Model) decide(isCoffee, isBeans bool) {
	txn, ok := m.selected()
	if !ok {
		return
	}
	o := model.Override{TransactionID: txn.ID, ConfirmedAt: m.now(), IsCoffee: &isCoffee}
	if isCoffee {
		o.IsBeans = &isBeans
	}
	if _, seen := m.decisions[txn.ID]; !seen {
		m.order = append(m.order, txn.ID)
	}
	m.decisions[txn.ID] = o
	m.refresh()
}

func (m Model) selected() (model.CoffeeTransaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.CoffeeTransaction{}, false
	}
	return m.visible[i], true
}

// refresh recomputes the visible rows from the filter and pending decisions.
func (m *Model) refresh() {
	filter := browseFilters[m.filterIdx]

	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.all))
	for _, txn := range m.all {
		if !m.display.Matches(txn, filter, "", "") {
			continue
		}
		m.visible = append(m.visible, txn)
		rows = append(rows, table.Row{
			txn.Date + " " + txn.Time,
			m.marker(txn),
			m.display.CafeName(txn.Transaction),
			txn.Description,
			fmt.Sprintf("%.2f", txn.Amount),
		})
	}
	m.table.SetRows(rows)
}

func (m Model) marker(txn model.CoffeeTransaction) string {
	if o, ok := m.decisions[txn.ID]; ok {
		switch {
		case !*o.IsCoffee:
			return cli.ErrorIcon
		case o.IsBeans != nil && *o.IsBeans:
			return "B" + cli.SuccessIcon
		default:
			return "C" + cli.SuccessIcon
		}
	}
	if txn.IsBeans {
		return "B"
	}
	return "C"
}

func (m Model) helpView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, cli.BoldStyle.Render(h.Key)+" "+h.Desc)
	}
	return cli.SubtleStyle.Render(strings.Join(parts, " · "))
}

func filterLabel(f classification.Filter) string {
	if f == classification.FilterAll {
		return "all"
	}
	return string(f)
}
