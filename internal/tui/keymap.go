package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap 终端编辑器的应用级快捷键；其余按键交给选区状态机
type KeyMap struct {
	Filter       key.Binding
	ClearFilters key.Binding
	InsertRow    key.Binding
	DeleteRows   key.Binding
	NextView     key.Binding
	Export       key.Binding
	Undo         key.Binding
	Redo         key.Binding
	Help         key.Binding
	Quit         key.Binding
	Submit       key.Binding
	Cancel       key.Binding
}

// DefaultKeyMap 默认快捷键
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Filter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "clear filters"),
		),
		InsertRow: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "insert row"),
		),
		DeleteRows: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete rows"),
		),
		NextView: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "next view"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export xlsx"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "redo"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp 实现 help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Undo, k.Redo, k.Export, k.Help, k.Quit}
}

// FullHelp 实现 help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.ClearFilters, k.NextView},
		{k.InsertRow, k.DeleteRows, k.Export},
		{k.Undo, k.Redo, k.Help, k.Quit},
	}
}
