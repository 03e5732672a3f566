package tui

import (
	"os"
	"os/exec"
	"strings"
	"unicode"

	"draftpad/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
)

// externalEdit tracks a story body handed to $VISUAL/$EDITOR.
type externalEdit struct {
	path   string
	before string
}

type externalEditDoneMsg struct {
	editor uint64
	err    error
}

func externalEditorName() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "vi"
}

// editorArgv splits an editor command line into argv. Single and double quotes
// group words; a backslash escapes the next rune outside single quotes.
func editorArgv(cmdline string) []string {
	var (
		argv  []string
		word  strings.Builder
		quote rune
		esc   bool
		have  bool
	)
	for _, r := range cmdline {
		switch {
		case esc:
			word.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc = true
			have = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
			have = true
		case quote == 0 && unicode.IsSpace(r):
			if have || word.Len() > 0 {
				argv = append(argv, word.String())
				word.Reset()
				have = false
			}
		default:
			word.WriteRune(r)
			have = true
		}
	}
	if have || word.Len() > 0 {
		argv = append(argv, word.String())
	}
	return argv
}

func (e *editorFullscreen) openExternalEditor() (tea.Cmd, error) {
	argv := editorArgv(externalEditorName())
	if len(argv) == 0 {
		argv = []string{"vi"}
	}

	f, err := os.CreateTemp("", "draftpad-story-*.md")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	before := e.body.value()
	if _, err := f.WriteString(before); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	e.external = externalEdit{path: path, before: before}
	id := e.id
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditDoneMsg{editor: id, err: err}
	}), nil
}

// applyExternalEdit loads the edited file back into the body and removes it.
func (e *editorFullscreen) applyExternalEdit(msg externalEditDoneMsg) tea.Cmd {
	ext := e.external
	e.external = externalEdit{}
	if strings.TrimSpace(ext.path) == "" {
		return nil
	}
	defer func() { _ = os.Remove(ext.path) }()

	if msg.err != nil {
		e.SetStatus(e.msgs.Message("editor_failed", msg.err.Error()), true)
		return nil
	}
	b, err := os.ReadFile(ext.path)
	if err != nil {
		e.SetStatus(e.msgs.Message("editor_failed", err.Error()), true)
		return nil
	}
	after := string(b)
	if after == ext.before {
		e.SetStatus(e.msgs.Message("editor_unchanged", externalEditorName()), false)
		return nil
	}
	e.body.replace(after)
	e.SetStatus(e.msgs.Message("editor_updated", externalEditorName()), false)
	return e.changed(validate.FieldBody)
}
