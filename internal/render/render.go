package render

import (
	"bytes"
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// WordsPerMinute is the reading speed used for estimates.
const WordsPerMinute = 200

// Without gmhtml.WithUnsafe goldmark drops raw HTML in the body; the sanitizer
// in HTML is a second line.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// HTML renders a markdown story body to sanitized HTML. Empty bodies render to "".
func HTML(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(body), &b); err != nil {
		return "", err
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(b.String())), nil
}

// HTMLOrEscaped is HTML with a preformatted fallback when conversion fails.
func HTMLOrEscaped(body string) string {
	out, err := HTML(body)
	if err != nil {
		return "<pre>" + html.EscapeString(body) + "</pre>"
	}
	return out
}

type Estimate struct {
	Words   int `json:"words"`
	Minutes int `json:"minutes"`
}

// ReadingTime estimates reading time of rendered HTML. Minutes are rounded up.
func ReadingTime(renderedHTML string) Estimate {
	text := PlainText(renderedHTML)
	words := len(strings.Fields(text))
	return Estimate{
		Words:   words,
		Minutes: int(math.Ceil(float64(words) / WordsPerMinute)),
	}
}

// PlainText strips markup and decodes entities.
func PlainText(renderedHTML string) string {
	if strings.TrimSpace(renderedHTML) == "" {
		return ""
	}
	// Block boundaries would otherwise glue adjacent words together.
	spaced := strings.NewReplacer("<", " <", ">", "> ").Replace(renderedHTML)
	return html.UnescapeString(plainPolicy.Sanitize(spaced))
}
