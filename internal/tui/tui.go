package tui

import (
	"context"

	"draftpad/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions select the first screen and terminal appearance.
type RunOptions struct {
	Options
	// DraftID opens the editor directly; closing it ends the program.
	DraftID string
	// NewDraft creates a draft and opens it, like DraftID.
	NewDraft bool
	Theme    string
	NoColor  bool
}

func Run(ctx context.Context, s store.Store, ro RunOptions) error {
	applyColorProfilePreference(ro.NoColor)
	applyThemePreference(ro.Theme)

	m := newAppModel(ctx, s, ro.Options)
	switch {
	case ro.DraftID != "":
		m.quitOnClose = true
		m.startup = m.fetchDraft(ro.DraftID)
	case ro.NewDraft:
		m.quitOnClose = true
		m.startup = m.createDraft()
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
