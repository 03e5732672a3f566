package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// previewPane shows the glamour rendering of the last propagated body. The
// markdown is only re-rendered when the body or width changes.
type previewPane struct {
	vp       viewport.Model
	body     string
	width    int
	rendered string
}

func newPreviewPane() previewPane {
	return previewPane{vp: viewport.New(0, 0)}
}

func (p *previewPane) setSize(w, h int) {
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	p.vp.Width = w
	p.vp.Height = h
	p.refresh(p.body)
}

func (p *previewPane) refresh(body string) {
	if body == p.body && p.width == p.vp.Width && p.rendered != "" {
		return
	}
	p.body = body
	p.width = p.vp.Width
	p.rendered = renderMarkdown(body, p.vp.Width)
	p.vp.SetContent(p.rendered)
}

func (p *previewPane) scroll(down bool) {
	if down {
		p.vp.HalfViewDown()
		return
	}
	p.vp.HalfViewUp()
}

func (p previewPane) view() string { return p.vp.View() }
