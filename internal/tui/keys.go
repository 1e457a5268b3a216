package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the debate screen's bindings. It implements help.KeyMap.
type keyMap struct {
	Submit       key.Binding
	NextSpeech   key.Binding
	ToggleAuto   key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ToggleBudget key.Binding
	Export       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "deliver speech"),
		),
		NextSpeech: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next automated speech"),
		),
		ToggleAuto: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "toggle autoplay"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll down"),
		),
		ToggleBudget: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle budgets"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export transcript"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h", "f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextSpeech, k.ToggleAuto, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.NextSpeech, k.ToggleAuto},
		{k.ScrollUp, k.ScrollDown, k.ToggleBudget},
		{k.Export, k.Help, k.Quit},
	}
}
