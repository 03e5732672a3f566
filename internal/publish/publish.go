package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"draftpad/internal/model"
	"draftpad/internal/render"
	"draftpad/internal/store"
	"draftpad/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const AppName = "draftpad/1.0"

var ErrInvalidDraft = errors.New("draft has validation errors")

// Post is the publish handoff for a draft. A broadcaster picks it up from the outbox.
type Post struct {
	DraftID      string             `json:"draftId"`
	Permlink     string             `json:"permlink"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	BodyHTML     string             `json:"bodyHtml"`
	ParentTopic  string             `json:"parentPermlink"`
	JSONMetadata Metadata           `json:"jsonMetadata"`
	Reward       model.RewardOption `json:"reward"`
	Upvote       bool               `json:"upvote"`
	IsUpdate     bool               `json:"isUpdate"`
	ReadingTime  render.Estimate    `json:"readingTime"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type Metadata struct {
	Tags   []string `json:"tags"`
	App    string   `json:"app"`
	Format string   `json:"format"`
	Images []string `json:"image,omitempty"`
}

type BuildOptions struct {
	Validator *validate.Validator
	Now       time.Time
}

// Build validates a draft and assembles the post to publish. Updates keep the
// permlink they were first published under and cannot change reward or upvote.
func Build(d model.Draft, opt BuildOptions) (Post, error) {
	if opt.Validator != nil {
		if errs := opt.Validator.Validate(d.Fields()); !errs.OK() {
			return Post{}, fmt.Errorf("%w: %s", ErrInvalidDraft, errs.Error())
		}
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	bodyHTML, err := render.HTML(d.Body)
	if err != nil {
		return Post{}, fmt.Errorf("render body: %w", err)
	}

	permlink := strings.TrimSpace(d.Permlink)
	isUpdate := permlink != ""
	if !isUpdate {
		permlink = Permlink(d.Title)
	}

	topics := model.NormalizeTopics(d.Topics)
	parent := ""
	if len(topics) > 0 {
		parent = topics[0]
	}

	return Post{
		DraftID:     d.ID,
		Permlink:    permlink,
		Title:       strings.TrimSpace(d.Title),
		Body:        d.Body,
		BodyHTML:    bodyHTML,
		ParentTopic: parent,
		JSONMetadata: Metadata{
			Tags:   topics,
			App:    AppName,
			Format: "markdown",
			Images: imageURLs(bodyHTML),
		},
		Reward:      d.Reward,
		Upvote:      d.Upvote && !isUpdate,
		IsUpdate:    isUpdate,
		ReadingTime: render.ReadingTime(bodyHTML),
		CreatedAt:   now,
	}, nil
}

// WriteOutbox writes the post as <dir>/<permlink>.json and returns the path.
func WriteOutbox(dir string, p Post) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("missing outbox dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(filepath.Clean(dir), p.Permlink+".json")
	if err := store.WriteFileAtomic(path, b); err != nil {
		return "", err
	}
	return path, nil
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Permlink derives a URL slug from a title: accents are folded, everything
// outside [a-z0-9] becomes a single hyphen. Titles without any usable character
// get a random slug.
func Permlink(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > 200 {
		slug = strings.TrimRight(slug[:200], "-")
	}
	if slug == "" {
		return "post-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return slug
}

func imageURLs(html string) []string {
	var out []string
	rest := html
	for {
		i := strings.Index(rest, `<img src="`)
		if i < 0 {
			return out
		}
		rest = rest[i+len(`<img src="`):]
		j := strings.IndexByte(rest, '"')
		if j < 0 {
			return out
		}
		out = append(out, rest[:j])
		rest = rest[j:]
	}
}
