package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Contacts key.Binding
	Accounts key.Binding
	Clear    key.Binding
	Logout   key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Contacts: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "fetch contacts")),
		Accounts: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "fetch accounts")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) actions() []key.Binding {
	return []key.Binding{k.Contacts, k.Accounts, k.Clear, k.Logout}
}
