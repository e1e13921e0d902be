package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser's keyboard shortcuts. Row navigation is the
// table's own.
type KeyMap struct {
	Filter    key.Binding
	Coffee    key.Binding
	Beans     key.Binding
	NotCoffee key.Binding
	Undo      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Filter: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f", "next filter"),
		),
		Coffee: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "drink"),
		),
		Beans: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "beans"),
		),
		NotCoffee: key.NewBinding(
			key.WithKeys("n", "x"),
			key.WithHelp("n", "not coffee"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "backspace"),
			key.WithHelp("u", "undo"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "save & quit"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Coffee, k.Beans, k.NotCoffee, k.Undo, k.Quit}
}
