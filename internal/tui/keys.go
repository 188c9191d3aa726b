package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Rock     key.Binding
	Paper    key.Binding
	Scissors key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rock, k.Paper, k.Scissors, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Rock: key.NewBinding(
			key.WithKeys("r", "1"),
			key.WithHelp("r/1", "rock"),
		),
		Paper: key.NewBinding(
			key.WithKeys("p", "2"),
			key.WithHelp("p/2", "paper"),
		),
		Scissors: key.NewBinding(
			key.WithKeys("s", "3"),
			key.WithHelp("s/3", "scissors"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset score"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// setChoicesEnabled toggles the move bindings so they vanish from help and
// stop matching while a round is deciding.
func (k *keyMap) setChoicesEnabled(enabled bool) {
	k.Rock.SetEnabled(enabled)
	k.Paper.SetEnabled(enabled)
	k.Scissors.SetEnabled(enabled)
}
