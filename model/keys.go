package model

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Open    key.Binding
	Search  key.Binding
	Sort    key.Binding
	Refresh key.Binding
	Dismiss key.Binding
	Quit    key.Binding

	Back key.Binding
	Copy key.Binding

	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Editor    key.Binding

	Confirm key.Binding
	Deny    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Back: key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "back")),
		Copy: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),

		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab")),
		Editor:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "$EDITOR")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Deny:    key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Open, k.Search, k.Sort, k.Refresh, k.Quit}
}

func (k keyMap) viewHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Delete, k.Copy, k.Back, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Editor, k.Cancel}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny}
}
