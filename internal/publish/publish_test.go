package publish

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"draftpad/internal/intl"
	"draftpad/internal/model"
	"draftpad/internal/validate"

	"golang.org/x/text/language"
)

func testDraft() model.Draft {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	d := model.NewDraft("d-1", now)
	d.Title = "Crème Brûlée, at 3AM!"
	d.Topics = []string{"food", "dessert"}
	d.Body = "Hello **world**.\n\n![pic](/tmp/pic.png)"
	d.Reward = model.RewardAll
	return d
}

func TestPermlink(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Crème Brûlée, at 3AM!": "creme-brulee-at-3am",
		"  Hello   World  ":     "hello-world",
		"already-kebab":         "already-kebab",
	}
	for in, want := range cases {
		if got := Permlink(in); got != want {
			t.Fatalf("Permlink(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Permlink("!!!"); !strings.HasPrefix(got, "post-") || len(got) != len("post-")+12 {
		t.Fatalf("unexpected fallback permlink %q", got)
	}
}

func TestBuild_NewPost(t *testing.T) {
	t.Parallel()

	v := validate.New(intl.New(language.English))
	now := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	p, err := Build(testDraft(), BuildOptions{Validator: v, Now: now})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Permlink != "creme-brulee-at-3am" || p.IsUpdate || !p.Upvote {
		t.Fatalf("unexpected post: %+v", p)
	}
	if p.ParentTopic != "food" || len(p.JSONMetadata.Tags) != 2 || p.JSONMetadata.App != AppName {
		t.Fatalf("unexpected metadata: %+v", p.JSONMetadata)
	}
	if !strings.Contains(p.BodyHTML, "<strong>world</strong>") {
		t.Fatalf("body not rendered: %q", p.BodyHTML)
	}
	if len(p.JSONMetadata.Images) != 1 || p.JSONMetadata.Images[0] != "/tmp/pic.png" {
		t.Fatalf("images = %v", p.JSONMetadata.Images)
	}
	if p.ReadingTime.Minutes != 1 || !p.CreatedAt.Equal(now) {
		t.Fatalf("unexpected reading time/created: %+v", p)
	}
}

func TestBuild_UpdateKeepsPermlinkAndSkipsUpvote(t *testing.T) {
	t.Parallel()

	d := testDraft()
	d.Permlink = "first-title"
	p, err := Build(d, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Permlink != "first-title" || !p.IsUpdate || p.Upvote {
		t.Fatalf("unexpected update post: %+v", p)
	}
}

func TestBuild_RejectsInvalidDraft(t *testing.T) {
	t.Parallel()

	d := testDraft()
	d.Topics = nil
	_, err := Build(d, BuildOptions{Validator: validate.New(intl.New(language.English))})
	if !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}
	if !strings.Contains(err.Error(), "Please enter topics") {
		t.Fatalf("expected topics message, got %v", err)
	}
}

func TestWriteOutbox(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	p, err := Build(testDraft(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path, err := WriteOutbox(dir, p)
	if err != nil {
		t.Fatalf("write outbox: %v", err)
	}
	if filepath.Base(path) != "creme-brulee-at-3am.json" {
		t.Fatalf("unexpected path %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["permlink"] != "creme-brulee-at-3am" || got["reward"] != "100" {
		t.Fatalf("unexpected json: %v", got)
	}
}

func TestRenderDraftMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderDraftMarkdown(testDraft())
	for _, want := range []string{
		"title: \"Crème Brûlée, at 3AM!\"",
		"topics: [\"food\", \"dessert\"]",
		"reward: \"100\"",
		"upvote: true",
		"# Crème Brûlée, at 3AM!",
		"Hello **world**.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}
