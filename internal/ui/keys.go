package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the overview
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Clear     key.Binding
	Water     key.Binding
	Fertilize key.Binding
	Prune     key.Binding
	Archive   key.Binding
	History   key.Binding
	Search    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle selection")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Water:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "water selected")),
		Fertilize: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fertilize selected")),
		Prune:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prune selected")),
		Archive:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "archive selected")),
		History:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "care history")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Water, k.Fertilize, k.History, k.Help, k.Quit}
}

// FullHelp returns all bindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Search, k.Refresh},
		{k.Toggle, k.Clear, k.Archive, k.History},
		{k.Water, k.Fertilize, k.Prune},
		{k.Help, k.Quit},
	}
}
