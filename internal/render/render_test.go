package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTML_EmptyBody(t *testing.T) {
	t.Parallel()

	out, err := HTML("   \n")
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestHTML_RendersMarkdownAndDropsScripts(t *testing.T) {
	t.Parallel()

	out, err := HTML("# Hi\n\nSome **bold** text.\n\n<script>alert(1)</script>\n\n- [x] done")
	require.NoError(t, err)
	require.Contains(t, out, "<h1")
	require.Contains(t, out, "<strong>bold</strong>")
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "alert(1)")
}

func TestMarkdownRenderer_OmitsRawHTMLBeforeSanitizing(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, markdownRenderer.Convert([]byte("<div onclick=\"x()\">hi</div>\n\nline one\nline two"), &b))
	out := b.String()
	require.NotContains(t, out, "<div")
	require.Contains(t, out, "raw HTML omitted")
	require.Contains(t, out, "line one<br>")
}

func TestReadingTime(t *testing.T) {
	t.Parallel()

	require.Equal(t, Estimate{}, ReadingTime(""))

	body := strings.TrimSpace(strings.Repeat("word ", 400))
	html, err := HTML(body)
	require.NoError(t, err)
	require.Equal(t, Estimate{Words: 400, Minutes: 2}, ReadingTime(html))

	require.Equal(t, Estimate{Words: 3, Minutes: 1}, ReadingTime("<p>one two</p><p>three</p>"))
	require.Equal(t, 2, ReadingTime("<p>"+strings.Repeat("w ", 201)+"</p>").Minutes)
}

func TestPlainText_DecodesEntities(t *testing.T) {
	t.Parallel()

	got := strings.Join(strings.Fields(PlainText("<p>Tom &amp; Jerry</p><ul><li>a</li><li>b</li></ul>")), " ")
	require.Equal(t, "Tom & Jerry a b", got)
}
