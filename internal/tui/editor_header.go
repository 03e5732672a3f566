package tui

import (
	"strings"
	"time"

	"draftpad/internal/intl"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

type headerState struct {
	Title      string
	Loading    bool
	IsUpdating bool
	Saving     bool
	SavedAt    time.Time
	Now        time.Time
}

func headerButtonText(msgs *intl.Formatter, st headerState) string {
	switch {
	case st.Loading:
		return msgs.Message("submitting")
	case st.IsUpdating:
		return msgs.Message("update")
	default:
		return msgs.Message("publish")
	}
}

func headerSaveText(msgs *intl.Formatter, st headerState) string {
	switch {
	case st.Saving:
		return msgs.Message("saving")
	case !st.SavedAt.IsZero():
		now := st.Now
		if now.IsZero() {
			now = time.Now()
		}
		return msgs.Message("saved", humanize.RelTime(st.SavedAt, now, "ago", "from now"))
	default:
		return msgs.Message("draft_unsaved")
	}
}

// renderEditorHeader lays out the draft title on the left and save state plus the
// submit button on the right, truncating the title to fit.
func renderEditorHeader(msgs *intl.Formatter, st headerState, width int) string {
	button := styleButton(!st.Loading).Render(headerButtonText(msgs, st))
	status := styleMuted().Render(headerSaveText(msgs, st))
	right := lipgloss.JoinHorizontal(lipgloss.Center, status, "  ", button)

	title := strings.TrimSpace(st.Title)
	if title == "" {
		title = msgs.Message("title_placeholder")
	}
	avail := width - lipgloss.Width(right) - 2
	if avail < 1 {
		avail = 1
	}
	left := styleLabel(false).Render(xansi.Truncate(title, avail, "…"))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
