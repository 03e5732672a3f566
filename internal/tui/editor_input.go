package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"draftpad/internal/intl"
	"draftpad/internal/render"

	"github.com/charmbracelet/bubbles/textarea"
)

const (
	bodyMinRows = 6
	bodyMaxRows = 12
)

// bodyInput is the story textarea plus its reading-time addon.
type bodyInput struct {
	area textarea.Model
}

func newBodyInput(initial, placeholder string) bodyInput {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.SetHeight(bodyMinRows)
	ta.SetValue(initial)
	b := bodyInput{area: ta}
	b.autosize()
	return b
}

func (b *bodyInput) value() string { return b.area.Value() }

func (b *bodyInput) setWidth(w int) {
	if w < 10 {
		w = 10
	}
	b.area.SetWidth(w)
	b.autosize()
}

// autosize grows the textarea with its content between bodyMinRows and bodyMaxRows.
func (b *bodyInput) autosize() {
	rows := b.area.LineCount()
	if rows < bodyMinRows {
		rows = bodyMinRows
	}
	if rows > bodyMaxRows {
		rows = bodyMaxRows
	}
	if b.area.Height() != rows {
		b.area.SetHeight(rows)
	}
}

// insertImage inserts a markdown image reference at the cursor on its own line.
func (b *bodyInput) insertImage(name, path string) {
	alt := strings.TrimSuffix(name, filepath.Ext(name))
	ref := fmt.Sprintf("![%s](%s)", alt, filepath.ToSlash(path))
	if cur := b.area.Value(); cur != "" && !strings.HasSuffix(cur, "\n") && b.area.Line() == b.area.LineCount()-1 {
		ref = "\n" + ref
	}
	b.area.InsertString(ref + "\n")
	b.autosize()
}

func (b *bodyInput) replace(body string) {
	b.area.SetValue(body)
	b.autosize()
}

// readingTimeAddon renders the words/minutes estimate for the rendered body. It is
// empty while nothing has been rendered.
func readingTimeAddon(msgs *intl.Formatter, renderedBody string) string {
	if strings.TrimSpace(renderedBody) == "" {
		return ""
	}
	est := render.ReadingTime(renderedBody)
	return msgs.Message("reading_time", est.Words, est.Minutes)
}
