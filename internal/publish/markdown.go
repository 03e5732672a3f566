package publish

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"draftpad/internal/model"
	"draftpad/internal/render"
)

// RenderDraftMarkdown exports a draft as a markdown document with a front-matter header.
func RenderDraftMarkdown(d model.Draft) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("---")
	writeLn("title: " + strconv.Quote(strings.TrimSpace(d.Title)))
	topics := model.NormalizeTopics(d.Topics)
	quoted := make([]string, 0, len(topics))
	for _, t := range topics {
		quoted = append(quoted, strconv.Quote(t))
	}
	writeLn("topics: [" + strings.Join(quoted, ", ") + "]")
	writeLn("reward: " + strconv.Quote(string(d.Reward)))
	writeLn("upvote: " + strconv.FormatBool(d.Upvote))
	if d.Permlink != "" {
		writeLn("permlink: " + strconv.Quote(d.Permlink))
	}
	if d.PublishedAt != nil {
		writeLn("published: " + d.PublishedAt.UTC().Format(time.RFC3339))
	}
	writeLn("updated: " + d.UpdatedAt.UTC().Format(time.RFC3339))
	est := render.ReadingTime(render.HTMLOrEscaped(d.Body))
	writeLn("words: " + strconv.Itoa(est.Words))
	writeLn("---")
	writeLn("")

	if title := strings.TrimSpace(d.Title); title != "" {
		writeLn("# " + title)
		writeLn("")
	}
	body := strings.TrimSpace(d.Body)
	if body == "" {
		body = "(empty)"
	}
	writeLn(body)
	return buf.String()
}
