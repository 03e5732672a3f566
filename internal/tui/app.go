package tui

import (
	"context"
	"errors"
	"strings"

	"draftpad/internal/model"
	"draftpad/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

type screen int

const (
	screenDrafts screen = iota
	screenEditor
)

type draftsLoadedMsg struct {
	drafts []model.Draft
	err    error
}

type draftOpenMsg struct {
	draft model.Draft
	err   error
}

type draftDeletedMsg struct {
	id  string
	err error
}

type appModel struct {
	ctx   context.Context
	store store.Store
	opts  Options
	keys  draftsKeyMap

	screen screen
	drafts list.Model
	editor *withEditor

	// quitOnClose ends the program when the editor closes (draftpad edit).
	quitOnClose bool
	// startup replaces the initial list load when the program starts in the editor.
	startup     tea.Cmd
	lastDraftID string
	status      string

	width  int
	height int
}

func newAppModel(ctx context.Context, s store.Store, opts Options) appModel {
	return appModel{
		ctx:    ctx,
		store:  s,
		opts:   opts,
		keys:   defaultDraftsKeyMap(),
		screen: screenDrafts,
		drafts: newDraftsList(),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.startup != nil {
		return m.startup
	}
	return m.loadDrafts()
}

func (m appModel) loadDrafts() tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		ds, err := s.ListDrafts(ctx)
		return draftsLoadedMsg{drafts: ds, err: err}
	}
}

func (m *appModel) openEditor(d model.Draft) tea.Cmd {
	m.editor = newWithEditor(m.ctx, m.store, d, m.opts)
	m.screen = screenEditor
	m.lastDraftID = d.ID
	m.status = ""
	if m.width > 0 && m.height > 0 {
		return m.editor.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.drafts.SetSize(msg.Width, msg.Height-2)
		if m.editor != nil {
			return m, m.editor.Update(msg)
		}
		return m, nil

	case draftsLoadedMsg:
		if msg.err != nil {
			log.WithError(msg.err).Error("list drafts")
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		cmd := m.drafts.SetItems(draftItems(msg.drafts, m.opts.now()))
		selectDraftByID(&m.drafts, m.lastDraftID)
		return m, cmd

	case draftOpenMsg:
		if msg.err != nil {
			log.WithError(msg.err).Error("open draft")
			m.status = "Error: " + msg.err.Error()
			if m.quitOnClose {
				return m, tea.Quit
			}
			return m, nil
		}
		return m, m.openEditor(msg.draft)

	case draftDeletedMsg:
		if msg.err != nil {
			log.WithError(msg.err).WithField("draft", msg.id).Error("delete draft")
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		log.WithField("draft", msg.id).Info("draft deleted")
		m.status = "Deleted draft"
		return m, m.loadDrafts()

	case editorExitMsg:
		m.editor = nil
		m.screen = screenDrafts
		m.lastDraftID = msg.draftID
		if m.quitOnClose {
			return m, tea.Quit
		}
		return m, m.loadDrafts()
	}

	if m.screen == screenEditor && m.editor != nil {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			// Persist the final snapshot, then quit.
			m.quitOnClose = true
			return m, m.editor.editor.Close()
		}
		return m, m.editor.Update(msg)
	}
	return m.updateDrafts(msg)
}

func (m appModel) updateDrafts(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// While filtering, keys belong to the filter input.
		if m.drafts.FilterState() != list.Filtering {
			switch {
			case key.Matches(km, m.keys.Open):
				if d, ok := selectedDraft(m.drafts); ok {
					return m, m.fetchDraft(d.ID)
				}
				return m, nil
			case key.Matches(km, m.keys.New):
				return m, m.createDraft()
			case key.Matches(km, m.keys.Delete):
				if d, ok := selectedDraft(m.drafts); ok {
					return m, m.deleteDraft(d.ID)
				}
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.drafts, cmd = m.drafts.Update(msg)
	return m, cmd
}

func (m appModel) fetchDraft(id string) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		d, err := s.GetDraft(ctx, id)
		return draftOpenMsg{draft: d, err: err}
	}
}

func (m appModel) createDraft() tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		d, err := s.CreateDraft(ctx)
		if err == nil {
			log.WithField("draft", d.ID).Info("draft created")
		}
		return draftOpenMsg{draft: d, err: err}
	}
}

func (m appModel) deleteDraft(id string) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		err := s.DeleteDraft(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			err = nil
		}
		return draftDeletedMsg{id: id, err: err}
	}
}

func (m appModel) View() string {
	if m.screen == screenEditor && m.editor != nil {
		return m.editor.View()
	}
	out := m.drafts.View()
	if s := strings.TrimSpace(m.status); s != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, styleMuted().Render(s))
	}
	return out
}
