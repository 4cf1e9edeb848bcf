// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console's key bindings.
//
// Shell bindings (MenuToggle, Home, Quit's ctrl+c) work everywhere.
// Single-letter bindings only fire when no text input has focus; while
// an editor, the login form, a filter or the policy buffer is
// capturing, letters are typed instead.
type KeyMap struct {
	// Shell.
	MenuToggle key.Binding
	Home       key.Binding
	Quit       key.Binding

	// Lists and the side menu.
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Entity lists.
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Cancel  key.Binding
	Refresh key.Binding

	// Filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	// Forms.
	NextField     key.Binding
	PreviousField key.Binding
	Submit        key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	MenuToggle: key.NewBinding(
		key.WithKeys("f2", "ctrl+g"),
		key.WithHelp("F2", "menu"),
	),
	Home: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("F1", "home"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Add: key.NewBinding(
		key.WithKeys("a", "+"),
		key.WithHelp("a", "add"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete (twice)"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	PreviousField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-Tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
}

// ctrlC is the one quit key honored while a text input is capturing.
var ctrlC = key.NewBinding(key.WithKeys("ctrl+c"))
