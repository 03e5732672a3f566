package tui

import (
	"strings"
	"time"

	"draftpad/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
)

type draftItem struct {
	draft model.Draft
	now   time.Time
}

func (i draftItem) FilterValue() string {
	return i.draft.Title + " " + strings.Join(i.draft.Topics, " ")
}

func (i draftItem) Title() string {
	if t := strings.TrimSpace(i.draft.Title); t != "" {
		return t
	}
	return "(untitled)"
}

func (i draftItem) Description() string {
	parts := []string{}
	if i.draft.IsUpdating() {
		parts = append(parts, "published")
	} else {
		parts = append(parts, "draft")
	}
	parts = append(parts, "edited "+humanize.RelTime(i.draft.UpdatedAt, i.now, "ago", "from now"))
	if len(i.draft.Topics) > 0 {
		parts = append(parts, "#"+strings.Join(i.draft.Topics, " #"))
	}
	return strings.Join(parts, " · ")
}

type draftsKeyMap struct {
	Open   key.Binding
	New    key.Binding
	Delete key.Binding
}

func defaultDraftsKeyMap() draftsKeyMap {
	return draftsKeyMap{
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new draft")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	}
}

func newDraftsList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Drafts"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("draft", "drafts")
	// esc clears a filter; only q quits.
	l.KeyMap.Quit.SetKeys("q")
	cursorUp := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUp, "ctrl+p")...)
	cursorDown := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDown, "ctrl+n")...)

	keys := defaultDraftsKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.New, keys.Delete}
	}
	return l
}

func draftItems(drafts []model.Draft, now time.Time) []list.Item {
	items := make([]list.Item, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, draftItem{draft: d, now: now})
	}
	return items
}

func selectedDraft(l list.Model) (model.Draft, bool) {
	it, ok := l.SelectedItem().(draftItem)
	if !ok {
		return model.Draft{}, false
	}
	return it.draft, true
}

// selectDraftByID moves the cursor to id when it is listed.
func selectDraftByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		if di, ok := it.(draftItem); ok && di.draft.ID == id {
			l.Select(i)
			return
		}
	}
}
