package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func decodeEnvelope(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var env map[string]any
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("invalid json %q: %v", string(b), err)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("missing data envelope: %s", string(b))
	}
	return env
}

func newDraftViaCLI(t *testing.T, dir string, extra ...string) string {
	t.Helper()

	args := append([]string{"--dir", dir, "drafts", "new"}, extra...)
	out, errOut, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("drafts new: %v\nstderr: %s", err, string(errOut))
	}
	data, _ := decodeEnvelope(t, out)["data"].(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("expected draft id, got %s", string(out))
	}
	return id
}

func TestDrafts_NewShowList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir,
		"--title", "Hello World",
		"--topic", "go,tui",
		"--topic", "go",
		"--body", strings.TrimSpace(strings.Repeat("word ", 400)),
		"--reward", "all",
		"--upvote=false",
	)

	out, _, err := runCLI(t, []string{"--dir", dir, "drafts", "show", id})
	if err != nil {
		t.Fatalf("drafts show: %v", err)
	}
	env := decodeEnvelope(t, out)
	d := env["data"].(map[string]any)
	if d["title"] != "Hello World" || d["reward"] != "100" || d["upvote"] != false {
		t.Fatalf("unexpected draft: %#v", d)
	}
	topics, _ := d["topics"].([]any)
	if len(topics) != 2 || topics[0] != "go" || topics[1] != "tui" {
		t.Fatalf("unexpected topics: %#v", d["topics"])
	}
	meta := env["meta"].(map[string]any)
	rt := meta["readingTime"].(map[string]any)
	if rt["words"] != float64(400) || rt["minutes"] != float64(2) {
		t.Fatalf("unexpected reading time: %#v", rt)
	}

	out, _, err = runCLI(t, []string{"--dir", dir, "drafts", "list"})
	if err != nil {
		t.Fatalf("drafts list: %v", err)
	}
	list, _ := decodeEnvelope(t, out)["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one draft, got %d", len(list))
	}

	out, _, err = runCLI(t, []string{"--dir", dir, "drafts", "list", "--published"})
	if err != nil {
		t.Fatalf("drafts list --published: %v", err)
	}
	if list, _ := decodeEnvelope(t, out)["data"].([]any); len(list) != 0 {
		t.Fatalf("expected no published drafts, got %d", len(list))
	}
}

func TestDrafts_SetFromBodyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir)

	bodyPath := filepath.Join(t.TempDir(), "story.md")
	if err := os.WriteFile(bodyPath, []byte("From a file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, _, err := runCLI(t, []string{"--dir", dir, "drafts", "set", id, "--body-file", bodyPath})
	if err != nil {
		t.Fatalf("drafts set: %v", err)
	}
	env := decodeEnvelope(t, out)
	if env["data"].(map[string]any)["body"] != "From a file" {
		t.Fatalf("body not updated: %s", string(out))
	}
	if env["meta"].(map[string]any)["changed"] != true {
		t.Fatalf("expected changed=true")
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "drafts", "set", id, "--reward", "lots"}); err == nil {
		t.Fatalf("expected invalid reward to fail")
	}
}

func TestValidate_ReportsFieldErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--title", strings.Repeat("x", 256), "--topic", "Bad_Topic")

	out, errOut, err := runCLI(t, []string{"--dir", dir, "validate", id})
	if err == nil {
		t.Fatalf("expected validate to fail for an invalid draft")
	}
	if !strings.Contains(string(errOut), "is invalid") {
		t.Fatalf("expected error on stderr, got %q", string(errOut))
	}
	data := decodeEnvelope(t, out)["data"].(map[string]any)
	if data["ok"] != false {
		t.Fatalf("expected ok=false")
	}
	kinds := map[string]string{}
	for _, e := range data["errors"].([]any) {
		m := e.(map[string]any)
		kinds[m["field"].(string)] = m["kind"].(string)
	}
	want := map[string]string{
		"title":  "field_too_long",
		"topics": "invalid_topic_format",
		"body":   "missing_required_field",
	}
	for f, k := range want {
		if kinds[f] != k {
			t.Fatalf("field %s: got kind %q, want %q (all: %v)", f, kinds[f], k, kinds)
		}
	}
}

func TestValidate_LocalizedMessages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--topic", "go", "--body", "b")
	out, _, _ := runCLI(t, []string{"--dir", dir, "--locale", "de", "validate", id})
	data := decodeEnvelope(t, out)["data"].(map[string]any)
	errs := data["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if msg := errs[0].(map[string]any)["message"]; msg != "Der Titel darf nicht leer sein." {
		t.Fatalf("expected german message, got %v", msg)
	}
}

func TestPublish_WritesOutboxAndUpdates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--title", "Hello World", "--topic", "go", "--body", "Hi there")

	out, errOut, err := runCLI(t, []string{"--dir", dir, "publish", id})
	if err != nil {
		t.Fatalf("publish: %v\nstderr: %s", err, string(errOut))
	}
	env := decodeEnvelope(t, out)
	post := env["data"].(map[string]any)
	if post["permlink"] != "hello-world" || post["isUpdate"] != false || post["upvote"] != true {
		t.Fatalf("unexpected post: %#v", post)
	}
	path := env["meta"].(map[string]any)["outbox"].(string)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("outbox file missing: %v", err)
	}

	// Retitling after publish keeps the permlink; reward and upvote are frozen.
	if _, _, err := runCLI(t, []string{"--dir", dir, "drafts", "set", id, "--title", "Renamed"}); err != nil {
		t.Fatalf("drafts set: %v", err)
	}
	out, _, err = runCLI(t, []string{"--dir", dir, "publish", id})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	post = decodeEnvelope(t, out)["data"].(map[string]any)
	if post["permlink"] != "hello-world" || post["isUpdate"] != true || post["upvote"] != false || post["title"] != "Renamed" {
		t.Fatalf("unexpected update: %#v", post)
	}
}

func TestPublish_RefusesInvalidDraft(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--title", "No body")
	_, errOut, err := runCLI(t, []string{"--dir", dir, "publish", id})
	if err == nil {
		t.Fatalf("expected publish to fail")
	}
	if !strings.Contains(string(errOut), "validation errors") {
		t.Fatalf("unexpected stderr: %q", string(errOut))
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, "outbox")); len(entries) != 0 {
		t.Fatalf("expected empty outbox")
	}
}

func TestRender_HTMLAndReadingTime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--title", "T", "--body", "Hello <script>alert(1)</script> **world**")
	out, _, err := runCLI(t, []string{"--dir", dir, "render", id, "--markdown"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data := decodeEnvelope(t, out)["data"].(map[string]any)
	html := data["html"].(string)
	if !strings.Contains(html, "<strong>world</strong>") || strings.Contains(html, "<script") {
		t.Fatalf("unexpected html: %q", html)
	}
	if !strings.HasPrefix(data["markdown"].(string), "---\n") {
		t.Fatalf("expected markdown export with front matter")
	}
}

func TestDrafts_RemoveAndNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir)
	if _, _, err := runCLI(t, []string{"--dir", dir, "drafts", "rm", id}); err != nil {
		t.Fatalf("drafts rm: %v", err)
	}
	_, errOut, err := runCLI(t, []string{"--dir", dir, "drafts", "show", id})
	if err == nil {
		t.Fatalf("expected show of a deleted draft to fail")
	}
	if !strings.Contains(string(errOut), "draft not found: "+id) {
		t.Fatalf("unexpected stderr: %q", string(errOut))
	}
}

func TestDrafts_ExportAndEDN(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id := newDraftViaCLI(t, dir, "--title", "Exported", "--body", "Body text")

	out, _, err := runCLI(t, []string{"--dir", dir, "drafts", "export", id})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(out), "# Exported\n\nBody text") {
		t.Fatalf("unexpected markdown: %s", string(out))
	}

	out, _, err = runCLI(t, []string{"--dir", dir, "--format", "edn", "drafts", "show", id})
	if err != nil {
		t.Fatalf("show edn: %v", err)
	}
	if !strings.HasPrefix(string(out), "{:data {") || !strings.Contains(string(out), `:title "Exported"`) {
		t.Fatalf("unexpected edn: %s", string(out))
	}
}

func TestDocs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, _, err := runCLI(t, []string{"--dir", dir, "docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	topics, _ := decodeEnvelope(t, out)["data"].(map[string]any)["topics"].([]any)
	if len(topics) != 3 || topics[0] != "config" || topics[1] != "editor" || topics[2] != "publish" {
		t.Fatalf("unexpected topics: %v", topics)
	}

	out, _, err = runCLI(t, []string{"--dir", dir, "docs", "editor", "--raw"})
	if err != nil {
		t.Fatalf("docs editor: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Editor") {
		t.Fatalf("unexpected raw docs: %q", string(out))
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "docs", "../go.mod"}); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}
