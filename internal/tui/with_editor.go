package tui

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"draftpad/internal/intl"
	"draftpad/internal/model"
	"draftpad/internal/publish"
	"draftpad/internal/render"
	"draftpad/internal/store"
	"draftpad/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

// Options are the shared settings for the interactive screens.
type Options struct {
	Msgs          *intl.Formatter
	Rules         *validate.Validator
	ImageMaxBytes int64
	Wait          time.Duration
	Now           func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

type fieldsChangedMsg struct {
	fields model.Fields
}

type draftSavedMsg struct {
	draft model.Draft
	err   error
}

type submitRequestMsg struct {
	ev SubmitEvent
}

type publishDoneMsg struct {
	draft model.Draft
	post  publish.Post
	path  string
	err   error
}

type imageUploadRequestMsg struct {
	path string
}

type imageUploadedMsg struct {
	src string
	img store.Image
	err error
}

type imageInvalidMsg struct {
	path string
	err  error
}

type editorClosedMsg struct {
	fields model.Fields
}

// editorExitMsg is emitted once the final snapshot is persisted after close.
type editorExitMsg struct {
	draftID string
}

// withEditor is the editor state container: it owns the draft, derives the
// rendered body, persists propagated snapshots, and runs submit and image upload.
type withEditor struct {
	ctx   context.Context
	store store.Store
	opts  Options

	draft        model.Draft
	renderedBody string
	editor       *editorFullscreen

	// At most one save runs at a time; a snapshot arriving meanwhile waits in queued.
	// A publish counts as a save. A submit waiting for the running save is held
	// in submitting and runs before anything queued after it.
	saving     bool
	queued     *model.Fields
	submitting *model.Fields
	savedAt time.Time
	loading bool
	closing bool
}

func newWithEditor(ctx context.Context, s store.Store, d model.Draft, opts Options) *withEditor {
	if opts.Rules == nil {
		opts.Rules = validate.New(opts.Msgs)
	}
	w := &withEditor{
		ctx:   ctx,
		store: s,
		opts:  opts,
		draft: d,
	}
	w.renderedBody = renderBody(d.Body)
	if !d.UpdatedAt.Equal(d.CreatedAt) {
		w.savedAt = d.UpdatedAt
	}

	known, err := s.KnownTopics(ctx)
	if err != nil {
		log.WithError(err).Warn("load known topics")
	}
	prefs, err := s.LoadPrefs()
	if err != nil {
		log.WithError(err).Warn("load prefs")
	}
	if prefs.LastDraftID != d.ID {
		prefs.LastDraftID = d.ID
		if err := s.SavePrefs(prefs); err != nil {
			log.WithError(err).Warn("save prefs")
		}
	}

	props := w.props()
	props.InitialTitle = d.Title
	props.InitialTopics = d.Topics
	props.InitialBody = d.Body
	props.InitialReward = d.Reward
	props.InitialUpvote = d.Upvote
	w.editor = newEditorFullscreen(props, EditorDeps{
		Msgs:          opts.Msgs,
		Rules:         opts.Rules,
		KnownTopics:   known,
		ImageMaxBytes: opts.ImageMaxBytes,
		ImageStartDir: prefs.LastImageDir,
		Wait:          opts.Wait,
	})
	return w
}

func renderBody(body string) string {
	html, err := render.HTML(body)
	if err != nil {
		log.WithError(err).Warn("render body")
		return render.HTMLOrEscaped(body)
	}
	return html
}

// props is the current display state plus handlers that turn editor events into messages.
func (w *withEditor) props() EditorProps {
	return EditorProps{
		Visible:      true,
		RenderedBody: w.renderedBody,
		Loading:      w.loading,
		IsUpdating:   w.draft.IsUpdating(),
		Saving:       w.saving,
		SavedAt:      w.savedAt,
		OnClose: func(final model.Fields) tea.Cmd {
			return func() tea.Msg { return editorClosedMsg{fields: final} }
		},
		OnFieldsChanged: func(f model.Fields) tea.Cmd {
			return func() tea.Msg { return fieldsChangedMsg{fields: f} }
		},
		OnSubmit: func(ev SubmitEvent) tea.Cmd {
			return func() tea.Msg { return submitRequestMsg{ev: ev} }
		},
		OnImageUpload: func(path string) tea.Cmd {
			return func() tea.Msg { return imageUploadRequestMsg{path: path} }
		},
		OnImageInvalid: func(path string, err error) tea.Cmd {
			return func() tea.Msg { return imageInvalidMsg{path: path, err: err} }
		},
	}
}

func (w *withEditor) sync() { w.editor.SetProps(w.props()) }

func (w *withEditor) saveCmd(f model.Fields) tea.Cmd {
	w.saving = true
	ctx, s, id := w.ctx, w.store, w.draft.ID
	return func() tea.Msg {
		d, err := s.SaveFields(ctx, id, f)
		return draftSavedMsg{draft: d, err: err}
	}
}

// persist saves f now, or queues it behind the save in flight.
func (w *withEditor) persist(f model.Fields) tea.Cmd {
	if w.saving {
		c := f.Clone()
		w.queued = &c
		return nil
	}
	return w.saveCmd(f)
}

// next starts whatever waited for the finished save: a held submit, then the
// latest queued snapshot, then the exit after close.
func (w *withEditor) next() tea.Cmd {
	switch {
	case w.submitting != nil:
		f := *w.submitting
		w.submitting = nil
		return w.publishCmd(f)
	case w.queued != nil:
		f := *w.queued
		w.queued = nil
		return w.saveCmd(f)
	case w.closing:
		id := w.draft.ID
		return func() tea.Msg { return editorExitMsg{draftID: id} }
	}
	return nil
}

func (w *withEditor) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fieldsChangedMsg:
		if w.closing {
			return nil
		}
		w.renderedBody = renderBody(msg.fields.Body)
		cmd := w.persist(msg.fields)
		w.sync()
		return cmd

	case draftSavedMsg:
		w.saving = false
		if msg.err != nil {
			log.WithError(msg.err).WithField("draft", w.draft.ID).Error("save draft")
			w.editor.SetStatus(w.opts.Msgs.Message("save_failed", msg.err.Error()), true)
		} else {
			w.draft = msg.draft
			w.savedAt = msg.draft.UpdatedAt
			log.WithField("draft", w.draft.ID).Debug("draft saved")
		}
		cmd := w.next()
		w.sync()
		return cmd

	case submitRequestMsg:
		return w.submit(msg.ev)

	case publishDoneMsg:
		w.saving = false
		w.loading = false
		if msg.err != nil {
			log.WithError(msg.err).WithField("draft", w.draft.ID).Error("publish")
			w.editor.SetStatus(w.opts.Msgs.Message("publish_failed", msg.err.Error()), true)
		} else {
			w.draft = msg.draft
			w.savedAt = msg.draft.UpdatedAt
			log.WithFields(log.Fields{
				"draft":    w.draft.ID,
				"permlink": msg.post.Permlink,
				"update":   msg.post.IsUpdate,
				"outbox":   msg.path,
			}).Info("post published")
			w.editor.SetStatus(w.opts.Msgs.Message("published", msg.post.Permlink), false)
		}
		cmd := w.next()
		w.sync()
		return cmd

	case imageUploadRequestMsg:
		s, maxBytes := w.store, w.opts.ImageMaxBytes
		return func() tea.Msg {
			img, err := s.AddImage(msg.path, maxBytes)
			return imageUploadedMsg{src: msg.path, img: img, err: err}
		}

	case imageUploadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrInvalidImage) {
				return w.editor.imageInvalid(msg.src, msg.err)
			}
			log.WithError(msg.err).WithField("path", msg.src).Error("image upload")
			w.editor.SetStatus(w.opts.Msgs.Message("image_invalid", msg.err.Error()), true)
			return nil
		}
		w.rememberImageDir(msg.src)
		return w.editor.InsertImage(msg.img.Name, msg.img.Path)

	case imageInvalidMsg:
		log.WithError(msg.err).WithField("path", msg.path).Warn("image rejected")
		return nil

	case editorClosedMsg:
		w.closing = true
		w.renderedBody = renderBody(msg.fields.Body)
		return w.persist(msg.fields)
	}

	return w.editor.Update(msg)
}

func (w *withEditor) rememberImageDir(src string) {
	prefs, err := w.store.LoadPrefs()
	if err != nil {
		log.WithError(err).Warn("load prefs")
		return
	}
	prefs.LastImageDir = filepath.Dir(src)
	if err := w.store.SavePrefs(prefs); err != nil {
		log.WithError(err).Warn("save prefs")
	}
}

// submit persists the snapshot, builds the post, writes it to the outbox, and
// marks the draft published. Invalid snapshots stop here; the editor already
// shows the inline errors. The submitted snapshot supersedes any queued one and
// waits for a save already in flight.
func (w *withEditor) submit(ev SubmitEvent) tea.Cmd {
	if w.loading || w.closing {
		return nil
	}
	if !ev.Errors.OK() {
		log.WithField("draft", w.draft.ID).Debugf("submit blocked: %s", ev.Errors.Error())
		return nil
	}
	w.loading = true
	w.queued = nil
	fields := ev.Fields.Clone()
	if w.saving {
		w.submitting = &fields
		w.sync()
		return nil
	}
	cmd := w.publishCmd(fields)
	w.sync()
	return cmd
}

func (w *withEditor) publishCmd(fields model.Fields) tea.Cmd {
	w.saving = true
	ctx, s, id, opts := w.ctx, w.store, w.draft.ID, w.opts
	return func() tea.Msg {
		d, err := s.SaveFields(ctx, id, fields)
		if err != nil {
			return publishDoneMsg{err: err}
		}
		now := opts.now()
		post, err := publish.Build(d, publish.BuildOptions{Validator: opts.Rules, Now: now})
		if err != nil {
			return publishDoneMsg{err: err}
		}
		path, err := publish.WriteOutbox(s.OutboxDir(), post)
		if err != nil {
			return publishDoneMsg{err: err}
		}
		if !post.IsUpdate {
			if err := s.MarkPublished(ctx, id, post.Permlink, now); err != nil {
				return publishDoneMsg{err: err}
			}
		}
		d, err = s.GetDraft(ctx, id)
		if err != nil {
			return publishDoneMsg{err: err}
		}
		return publishDoneMsg{draft: d, post: post, path: path}
	}
}

func (w *withEditor) View() string { return w.editor.View() }
