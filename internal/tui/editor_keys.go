package tui

import "github.com/charmbracelet/bubbles/key"

type editorKeyMap struct {
	Next        key.Binding
	Prev        key.Binding
	Submit      key.Binding
	Image       key.Binding
	CopyHTML    key.Binding
	External    key.Binding
	Close       key.Binding
	PreviewUp   key.Binding
	PreviewDown key.Binding
	Toggle      key.Binding
	RewardPrev  key.Binding
	RewardNext  key.Binding
	TopicCommit key.Binding
	TopicDelete key.Binding
}

func defaultEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "publish")),
		Image:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "insert image")),
		CopyHTML:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy html")),
		External:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit in $EDITOR")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		PreviewUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "preview up")),
		PreviewDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "preview down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		RewardPrev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev option")),
		RewardNext:  key.NewBinding(key.WithKeys("right", "l", " ", "enter"), key.WithHelp("→", "next option")),
		TopicCommit: key.NewBinding(key.WithKeys(" ", ",", "enter"), key.WithHelp("space/,", "add topic")),
		TopicDelete: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "remove topic")),
	}
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Image, k.CopyHTML, k.PreviewDown, k.Close}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit, k.Close},
		{k.Image, k.CopyHTML, k.External, k.PreviewUp, k.PreviewDown},
		{k.TopicCommit, k.TopicDelete, k.RewardPrev, k.RewardNext, k.Toggle},
	}
}
