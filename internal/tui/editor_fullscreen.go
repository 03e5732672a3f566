package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"draftpad/internal/intl"
	"draftpad/internal/model"
	"draftpad/internal/store"
	"draftpad/internal/throttle"
	"draftpad/internal/validate"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SubmitEvent carries the field snapshot and its validation result to OnSubmit.
type SubmitEvent struct {
	Fields model.Fields
	Errors validate.Errors
}

// EditorProps is everything the surrounding state container hands to the editor.
// Initial* values seed the form once, at construction.
type EditorProps struct {
	Visible      bool
	RenderedBody string

	InitialTitle  string
	InitialTopics []string
	InitialBody   string
	InitialReward model.RewardOption
	InitialUpvote bool

	Loading    bool
	IsUpdating bool
	Saving     bool
	SavedAt    time.Time

	OnClose         func(final model.Fields) tea.Cmd
	OnFieldsChanged func(fields model.Fields) tea.Cmd
	OnSubmit        func(ev SubmitEvent) tea.Cmd
	OnImageUpload   func(path string) tea.Cmd
	OnImageInvalid  func(path string, err error) tea.Cmd
}

type EditorDeps struct {
	Msgs          *intl.Formatter
	Rules         *validate.Validator
	KnownTopics   []string
	ImageMaxBytes int64
	ImageStartDir string
	Wait          time.Duration
}

type editorFocus int

const (
	focusTitle editorFocus = iota
	focusTopics
	focusBody
	focusReward
	focusUpvote
	focusCount
)

var editorSeq atomic.Uint64

// fieldsFlushMsg is the wake-up scheduled for one change; only the newest fires.
type fieldsFlushMsg struct {
	editor uint64
	seq    uint64
}

type editorStatusMsg struct {
	editor uint64
	text   string
	isErr  bool
}

// editorFullscreen is the fullscreen post editor: a form column and, once a
// rendered body exists, a preview column.
type editorFullscreen struct {
	id    uint64
	props EditorProps
	deps  EditorDeps
	msgs  *intl.Formatter
	keys  editorKeyMap
	help  help.Model

	form    *formController
	limiter *throttle.Limiter
	// scheduleFlush arms the wake-up that ends a change's quiet period.
	scheduleFlush func(wait time.Duration, msg fieldsFlushMsg) tea.Cmd
	closed        bool

	title  textinput.Model
	topics topicsInput
	body   bodyInput
	reward model.RewardOption
	upvote bool
	focus  editorFocus

	previewBody string
	preview     previewPane

	picking bool
	picker  filepicker.Model

	external externalEdit

	status    string
	statusErr bool

	width  int
	height int
}

func newEditorFullscreen(props EditorProps, deps EditorDeps) *editorFullscreen {
	if deps.Rules == nil {
		deps.Rules = validate.New(deps.Msgs)
	}
	e := &editorFullscreen{
		id:      editorSeq.Add(1),
		deps:    deps,
		msgs:    deps.Msgs,
		keys:    defaultEditorKeyMap(),
		help:    help.New(),
		form:    newFormController(deps.Rules),
		limiter: throttle.New(deps.Wait),
		scheduleFlush: func(wait time.Duration, msg fieldsFlushMsg) tea.Cmd {
			return tea.Tick(wait, func(time.Time) tea.Msg { return msg })
		},
		preview: newPreviewPane(),
		width:   100,
		height:  30,
	}
	e.props = props
	e.seed(props)
	e.layout()
	return e
}

// seed applies the initial values. It runs once; later prop updates never reach it.
func (e *editorFullscreen) seed(p EditorProps) {
	e.title = textinput.New()
	e.title.Prompt = ""
	e.title.Placeholder = e.msgs.Message("title_placeholder")
	e.title.CharLimit = 0
	e.title.SetValue(p.InitialTitle)

	e.topics = newTopicsInput(p.InitialTopics, e.deps.KnownTopics, e.msgs.Message("topics_placeholder"))
	e.body = newBodyInput(p.InitialBody, e.msgs.Message("story_placeholder"))

	e.reward = p.InitialReward
	if _, ok := model.ParseRewardOption(string(e.reward)); !ok {
		e.reward = model.RewardHalf
	}
	e.upvote = p.InitialUpvote
	e.previewBody = p.InitialBody
	e.setFocus(focusTitle)
}

// SetProps replaces display state and handlers. Initial* values are ignored.
func (e *editorFullscreen) SetProps(p EditorProps) {
	e.props.Visible = p.Visible
	e.props.RenderedBody = p.RenderedBody
	e.props.Loading = p.Loading
	e.props.IsUpdating = p.IsUpdating
	e.props.Saving = p.Saving
	e.props.SavedAt = p.SavedAt
	e.props.OnClose = p.OnClose
	e.props.OnFieldsChanged = p.OnFieldsChanged
	e.props.OnSubmit = p.OnSubmit
	e.props.OnImageUpload = p.OnImageUpload
	e.props.OnImageInvalid = p.OnImageInvalid
	if e.props.IsUpdating && !e.focusable(e.focus) {
		e.setFocus(focusTitle)
	}
	e.layout()
}

func (e *editorFullscreen) Props() EditorProps { return e.props }

// Fields is the current snapshot of all form values.
func (e *editorFullscreen) Fields() model.Fields {
	return model.Fields{
		Title:  e.title.Value(),
		Topics: e.topics.values(),
		Body:   e.body.value(),
		Reward: e.reward,
		Upvote: e.upvote,
	}
}

func (e *editorFullscreen) SetStatus(text string, isErr bool) {
	e.status = text
	e.statusErr = isErr
}

// InsertImage adds a markdown reference to an uploaded image at the body cursor.
func (e *editorFullscreen) InsertImage(name, path string) tea.Cmd {
	if e.closed {
		return nil
	}
	e.body.insertImage(name, path)
	e.SetStatus(e.msgs.Message("image_inserted", name), false)
	return e.changed(validate.FieldBody)
}

// Close cancels the pending propagation and hands the final snapshot to OnClose.
// Topic text still in the input is committed first.
func (e *editorFullscreen) Close() tea.Cmd {
	if e.closed {
		return nil
	}
	e.topics.commit()
	e.closed = true
	e.limiter.Stop()
	if e.props.OnClose == nil {
		return nil
	}
	return e.props.OnClose(e.Fields())
}

func (e *editorFullscreen) focusable(f editorFocus) bool {
	if e.props.IsUpdating && (f == focusReward || f == focusUpvote) {
		return false
	}
	return true
}

func (e *editorFullscreen) setFocus(f editorFocus) {
	e.focus = f
	e.title.Blur()
	e.topics.input.Blur()
	e.body.area.Blur()
	switch f {
	case focusTitle:
		e.title.Focus()
	case focusTopics:
		e.topics.input.Focus()
	case focusBody:
		e.body.area.Focus()
	}
}

func (e *editorFullscreen) moveFocus(delta int) {
	f := e.focus
	for i := 0; i < int(focusCount); i++ {
		f = editorFocus((int(f) + delta + int(focusCount)) % int(focusCount))
		if e.focusable(f) {
			break
		}
	}
	e.setFocus(f)
}

// changed revalidates the field and restarts the quiet period before propagation.
func (e *editorFullscreen) changed(field validate.Field) tea.Cmd {
	if field != "" {
		e.form.change(field, e.Fields())
	}
	seq, schedule := e.limiter.Touch()
	if !schedule {
		return nil
	}
	return e.scheduleFlush(e.limiter.Wait(), fieldsFlushMsg{editor: e.id, seq: seq})
}

func (e *editorFullscreen) flush(msg fieldsFlushMsg) tea.Cmd {
	if msg.editor != e.id || e.closed || !e.limiter.Fire(msg.seq) {
		return nil
	}
	fields := e.Fields()
	e.previewBody = fields.Body
	e.preview.refresh(e.previewBody)
	if e.props.OnFieldsChanged == nil {
		return nil
	}
	return e.props.OnFieldsChanged(fields)
}

func (e *editorFullscreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fieldsFlushMsg:
		return e.flush(msg)
	case editorStatusMsg:
		if msg.editor == e.id {
			e.SetStatus(msg.text, msg.isErr)
		}
		return nil
	case externalEditDoneMsg:
		if msg.editor != e.id || e.closed {
			return nil
		}
		return e.applyExternalEdit(msg)
	}
	if e.closed {
		return nil
	}

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		e.width, e.height = ws.Width, ws.Height
		e.layout()
		if e.picking {
			e.picker.Height = e.pickerHeight()
		}
		return nil
	}

	if e.picking {
		return e.updatePicker(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e.updateFocused(msg)
	}

	switch {
	case key.Matches(km, e.keys.Close):
		return e.Close()
	case key.Matches(km, e.keys.Submit):
		return e.submit()
	case key.Matches(km, e.keys.Image):
		return e.openPicker()
	case key.Matches(km, e.keys.CopyHTML):
		return e.copyRenderedHTML()
	case key.Matches(km, e.keys.External) && e.focus == focusBody:
		cmd, err := e.openExternalEditor()
		if err != nil {
			e.SetStatus(e.msgs.Message("editor_failed", err.Error()), true)
			return nil
		}
		return cmd
	case key.Matches(km, e.keys.PreviewDown):
		e.preview.scroll(true)
		return nil
	case key.Matches(km, e.keys.PreviewUp):
		e.preview.scroll(false)
		return nil
	case key.Matches(km, e.keys.Next):
		if e.focus == focusTopics && strings.TrimSpace(e.topics.input.Value()) != "" {
			if e.topics.complete() {
				return e.changed(validate.FieldTopics)
			}
			if e.topics.commit() {
				cmd := e.changed(validate.FieldTopics)
				e.moveFocus(1)
				return cmd
			}
		}
		e.moveFocus(1)
		return nil
	case key.Matches(km, e.keys.Prev):
		e.moveFocus(-1)
		return nil
	}
	return e.updateFocused(km)
}

func (e *editorFullscreen) updateFocused(msg tea.Msg) tea.Cmd {
	km, isKey := msg.(tea.KeyMsg)
	switch e.focus {
	case focusTitle:
		before := e.title.Value()
		var cmd tea.Cmd
		e.title, cmd = e.title.Update(msg)
		if e.title.Value() != before {
			return tea.Batch(cmd, e.changed(validate.FieldTitle))
		}
		return cmd

	case focusTopics:
		if isKey && key.Matches(km, e.keys.TopicCommit) {
			if e.topics.commit() {
				return e.changed(validate.FieldTopics)
			}
			return nil
		}
		if isKey && key.Matches(km, e.keys.TopicDelete) && e.topics.input.Value() == "" {
			if e.topics.removeLast() {
				return e.changed(validate.FieldTopics)
			}
			return nil
		}
		var cmd tea.Cmd
		e.topics.input, cmd = e.topics.input.Update(msg)
		e.topics.refreshSuggestions()
		return cmd

	case focusBody:
		before := e.body.value()
		var cmd tea.Cmd
		e.body.area, cmd = e.body.area.Update(msg)
		if e.body.value() != before {
			e.body.autosize()
			return tea.Batch(cmd, e.changed(validate.FieldBody))
		}
		return cmd

	case focusReward:
		if !isKey || e.props.IsUpdating {
			return nil
		}
		switch {
		case key.Matches(km, e.keys.RewardPrev):
			e.reward = cycleReward(e.reward, -1)
			return e.changed("")
		case key.Matches(km, e.keys.RewardNext):
			e.reward = cycleReward(e.reward, 1)
			return e.changed("")
		}

	case focusUpvote:
		if !isKey || e.props.IsUpdating {
			return nil
		}
		if key.Matches(km, e.keys.Toggle) {
			e.upvote = !e.upvote
			return e.changed("")
		}
	}
	return nil
}

func cycleReward(cur model.RewardOption, delta int) model.RewardOption {
	opts := model.RewardOptions
	idx := 0
	for i, o := range opts {
		if o == cur {
			idx = i
			break
		}
	}
	return opts[(idx+delta+len(opts))%len(opts)]
}

// submit validates everything and hands the result to OnSubmit; the handler
// decides what invalid fields block.
func (e *editorFullscreen) submit() tea.Cmd {
	if e.props.Loading {
		return nil
	}
	var cmd tea.Cmd
	if e.topics.commit() {
		cmd = e.changed(validate.FieldTopics)
	}
	fields := e.Fields()
	errs := e.form.validateAll(fields)
	if !errs.OK() {
		e.SetStatus(e.msgs.Message("fix_errors"), true)
	}
	if e.props.OnSubmit == nil {
		return cmd
	}
	return tea.Batch(cmd, e.props.OnSubmit(SubmitEvent{Fields: fields, Errors: errs}))
}

func (e *editorFullscreen) copyRenderedHTML() tea.Cmd {
	html := e.props.RenderedBody
	if strings.TrimSpace(html) == "" {
		return nil
	}
	id := e.id
	msgs := e.msgs
	return func() tea.Msg {
		if err := clipboard.WriteAll(html); err != nil {
			return editorStatusMsg{editor: id, text: msgs.Message("copy_failed", err.Error()), isErr: true}
		}
		return editorStatusMsg{editor: id, text: msgs.Message("copied_html")}
	}
}

func (e *editorFullscreen) pickerHeight() int {
	h := e.height - 8
	if h < 5 {
		h = 5
	}
	return h
}

func (e *editorFullscreen) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = store.ImageExts()
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Height = e.pickerHeight()
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("h", "up"),
	)
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.DisabledFile = styleMuted()
	fp.Styles.FileSize = styleMuted().Width(fp.Styles.FileSize.GetWidth()).Align(lipgloss.Right)

	fp.CurrentDirectory = pickerStartDir(e.deps.ImageStartDir)
	e.picker = fp
	e.picking = true
	return fp.Init()
}

// pickerStartDir prefers the last used directory, then home, then the cwd.
func pickerStartDir(last string) string {
	if dir := strings.TrimSpace(last); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		return home
	}
	return "."
}

func (e *editorFullscreen) updatePicker(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && (km.String() == "esc" || km.String() == "ctrl+g") {
		e.picking = false
		return nil
	}
	var cmd tea.Cmd
	e.picker, cmd = e.picker.Update(msg)

	if ok, path := e.picker.DidSelectFile(msg); ok {
		e.picking = false
		e.deps.ImageStartDir = filepath.Dir(path)
		if _, err := store.CheckImage(path, e.deps.ImageMaxBytes); err != nil {
			return e.imageInvalid(path, err)
		}
		if e.props.OnImageUpload == nil {
			return nil
		}
		return e.props.OnImageUpload(path)
	}
	if ok, path := e.picker.DidSelectDisabledFile(msg); ok {
		e.picking = false
		return e.imageInvalid(path, errors.New(filepath.Ext(path)+" is not an image type"))
	}
	return cmd
}

func (e *editorFullscreen) imageInvalid(path string, err error) tea.Cmd {
	e.SetStatus(e.msgs.Message("image_invalid", err.Error()), true)
	if e.props.OnImageInvalid == nil {
		return nil
	}
	return e.props.OnImageInvalid(path, err)
}

func (e *editorFullscreen) showPreview() bool {
	return strings.TrimSpace(e.props.RenderedBody) != ""
}

func (e *editorFullscreen) columnWidths() (form, preview int) {
	if !e.showPreview() {
		return e.width, 0
	}
	form = e.width / 2
	return form, e.width - form
}

func (e *editorFullscreen) layout() {
	formW, previewW := e.columnWidths()
	inner := formW - 4
	if inner < 10 {
		inner = 10
	}
	e.title.Width = inner
	e.topics.input.Width = inner
	e.body.setWidth(inner)
	e.help.Width = e.width
	if previewW > 0 {
		e.preview.setSize(previewW-4, e.height-6)
		e.preview.refresh(e.previewBody)
	}
}

func (e *editorFullscreen) View() string {
	if !e.props.Visible {
		return ""
	}
	header := renderEditorHeader(e.msgs, headerState{
		Title:      e.title.Value(),
		Loading:    e.props.Loading,
		IsUpdating: e.props.IsUpdating,
		Saving:     e.props.Saving,
		SavedAt:    e.props.SavedAt,
	}, e.width)

	var main string
	if e.picking {
		main = styleLabel(true).Render(e.msgs.Message("insert_image")) + "\n\n" + e.picker.View()
	} else {
		formW, previewW := e.columnWidths()
		formCol := styleColumn(formW-2, true).Render(e.formView())
		if previewW > 0 {
			previewCol := styleColumn(previewW-2, false).Render(
				styleLabel(false).Render(e.msgs.Message("preview")) + "\n" + e.preview.view())
			main = lipgloss.JoinHorizontal(lipgloss.Top, formCol, previewCol)
		} else {
			main = formCol
		}
	}

	footer := e.help.View(e.keys)
	if e.status != "" {
		st := lipgloss.NewStyle().Foreground(colorSuccess)
		if e.statusErr {
			st = styleError()
		}
		footer = st.Render(e.status) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}

func (e *editorFullscreen) formView() string {
	var b strings.Builder
	field := func(label string, focused bool, input string, errText string, extra string) {
		b.WriteString(styleLabel(focused).Render(label))
		b.WriteString("\n")
		b.WriteString(input)
		b.WriteString("\n")
		if errText != "" {
			b.WriteString(styleError().Render(errText))
			b.WriteString("\n")
		} else if extra != "" {
			b.WriteString(styleMuted().Render(extra))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	inner := e.title.Width
	field(e.msgs.Message("title"), e.focus == focusTitle, e.title.View(), e.form.errorFor(validate.FieldTitle), "")
	field(e.msgs.Message("topics"), e.focus == focusTopics, e.topics.view(inner), e.form.errorFor(validate.FieldTopics), e.msgs.Message("topics_extra"))
	field(e.msgs.Message("story"), e.focus == focusBody, e.body.area.View(), e.form.errorFor(validate.FieldBody), readingTimeAddon(e.msgs, e.props.RenderedBody))

	b.WriteString(e.rewardView())
	b.WriteString("\n")
	b.WriteString(e.upvoteView())
	return b.String()
}

func (e *editorFullscreen) rewardView() string {
	parts := make([]string, 0, len(model.RewardOptions))
	for _, opt := range model.RewardOptions {
		mark := "( )"
		if opt == e.reward {
			mark = "(•)"
		}
		parts = append(parts, mark+" "+e.msgs.Message("reward_option_"+string(opt)))
	}
	row := e.msgs.Message("reward") + ": " + strings.Join(parts, "  ")
	if e.props.IsUpdating {
		return styleHidden().Render(row)
	}
	return styleLabel(e.focus == focusReward).Render(row)
}

func (e *editorFullscreen) upvoteView() string {
	box := "[ ]"
	if e.upvote {
		box = "[x]"
	}
	row := box + " " + e.msgs.Message("like_post")
	if e.props.IsUpdating {
		return styleHidden().Render(row)
	}
	return styleLabel(e.focus == focusUpvote).Render(row)
}
