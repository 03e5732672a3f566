package tui

import (
	"strings"

	"draftpad/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

const maxTopicSuggestions = 5

// topicsInput is a tags-mode input: typed text becomes a tag when a separator is
// entered. Only tag additions and removals count as field changes.
type topicsInput struct {
	tags        []string
	input       textinput.Model
	known       []string
	suggestions []string
}

func newTopicsInput(initial []string, known []string, placeholder string) topicsInput {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 0
	return topicsInput{
		tags:  model.NormalizeTopics(initial),
		input: in,
		known: known,
	}
}

func (t *topicsInput) values() []string {
	return append([]string(nil), t.tags...)
}

// commit turns the pending input into tags. It reports whether the tag list changed.
func (t *topicsInput) commit() bool {
	pending := strings.TrimSpace(t.input.Value())
	t.input.SetValue("")
	t.suggestions = nil
	if pending == "" {
		return false
	}
	next := model.NormalizeTopics(append(t.values(), pending))
	changed := len(next) != len(t.tags)
	t.tags = next
	return changed
}

func (t *topicsInput) removeLast() bool {
	if len(t.tags) == 0 {
		return false
	}
	t.tags = t.tags[:len(t.tags)-1]
	return true
}

// complete replaces the pending input with the best suggestion and commits it.
func (t *topicsInput) complete() bool {
	if len(t.suggestions) == 0 {
		return false
	}
	t.input.SetValue(t.suggestions[0])
	return t.commit()
}

func (t *topicsInput) refreshSuggestions() {
	pattern := strings.TrimSpace(t.input.Value())
	t.suggestions = nil
	if pattern == "" || len(t.known) == 0 {
		return
	}
	have := map[string]bool{}
	for _, tag := range t.tags {
		have[tag] = true
	}
	for _, m := range fuzzy.Find(pattern, t.known) {
		if have[m.Str] {
			continue
		}
		t.suggestions = append(t.suggestions, m.Str)
		if len(t.suggestions) == maxTopicSuggestions {
			return
		}
	}
}

func (t topicsInput) view(width int) string {
	chip := lipgloss.NewStyle().Padding(0, 1).Background(colorControlBg).Foreground(colorSurfaceFg)
	parts := make([]string, 0, len(t.tags)+1)
	for _, tag := range t.tags {
		parts = append(parts, chip.Render(tag))
	}
	parts = append(parts, t.input.View())
	line := lipgloss.NewStyle().Width(width).Render(strings.Join(parts, " "))
	if len(t.suggestions) > 0 {
		line += "\n" + styleMuted().Render("tab: "+strings.Join(t.suggestions, "  "))
	}
	return line
}
