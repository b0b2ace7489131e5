package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list screen bindings.
type keyMap struct {
	NextFilter key.Binding
	PrevFilter key.Binding
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Delete     key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Memo       key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextFilter: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next filter")),
		PrevFilter: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev filter")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("+", "a"), key.WithHelp("+", "add")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Memo:       key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "memo")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFilter, k.Add, k.Delete, k.Memo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextFilter, k.PrevFilter, k.Up, k.Down},
		{k.Add, k.Delete, k.Confirm, k.Cancel},
		{k.Memo, k.Reload, k.Help, k.Quit},
	}
}
