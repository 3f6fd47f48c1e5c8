// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package arena

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings for the problems screen.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Filter   key.Binding
	Reload   key.Binding
	Submit   key.Binding
	Back     key.Binding
	Edit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "solve")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "difficulty")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "submit")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "back")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit solution")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("PgUp", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("PgDn", "scroll down")),
	}
}

// listHelp, solveHelp and reportHelp are the bindings shown per state.
func (k KeyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Filter, k.Reload}
}

func (k KeyMap) solveHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back, k.PageUp, k.PageDown}
}

func (k KeyMap) reportHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Back, k.PageUp, k.PageDown}
}
