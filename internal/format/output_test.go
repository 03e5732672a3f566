package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSON_EnvelopeKeepsHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, Envelope{Data: map[string]any{"html": "<p>hi</p>"}}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"data\":{\"html\":\"<p>hi</p>\"}}\n" {
		t.Fatalf("unexpected json: %q", got)
	}
}

func TestWriteEDN(t *testing.T) {
	t.Parallel()

	v := Envelope{Data: map[string]any{
		"title":  "Hello",
		"topics": []string{"go", "tui"},
		"words":  400,
		"ratio":  0.5,
		"upvote": true,
		"none":   nil,
	}}
	var buf bytes.Buffer
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:data {:none nil :ratio 0.5 :title "Hello" :topics ["go" "tui"] :upvote true :words 400}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("edn:\n got %s\nwant %s", got, want)
	}

	buf.Reset()
	if err := WriteEDN(&buf, map[string]any{"a": []any{}}, true); err != nil {
		t.Fatalf("write pretty: %v", err)
	}
	if got := buf.String(); got != "{\n  :a []\n}\n" {
		t.Fatalf("pretty edn: %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, 1, "yaml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
