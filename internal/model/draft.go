package model

import (
	"strings"
	"time"
)

type RewardOption string

const (
	RewardAll  RewardOption = "100"
	RewardHalf RewardOption = "50"
	RewardNone RewardOption = "0"
)

// RewardOptions lists the payout choices in display order.
var RewardOptions = []RewardOption{RewardAll, RewardHalf, RewardNone}

func ParseRewardOption(s string) (RewardOption, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "100", "all":
		return RewardAll, true
	case "50", "half":
		return RewardHalf, true
	case "0", "none", "declined":
		return RewardNone, true
	default:
		return "", false
	}
}

type Draft struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Topics []string     `json:"topics"`
	Body   string       `json:"body"`
	Reward RewardOption `json:"reward"`
	Upvote bool         `json:"upvote"`

	// Permlink is set once the draft has been published; edits after that are updates.
	Permlink    string     `json:"permlink,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Fields is a snapshot of the editable part of a draft.
type Fields struct {
	Title  string       `json:"title"`
	Topics []string     `json:"topics"`
	Body   string       `json:"body"`
	Reward RewardOption `json:"reward"`
	Upvote bool         `json:"upvote"`
}

func NewDraft(id string, now time.Time) Draft {
	return Draft{
		ID:        id,
		Topics:    []string{},
		Reward:    RewardHalf,
		Upvote:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (d Draft) IsUpdating() bool { return strings.TrimSpace(d.Permlink) != "" }

func (d Draft) Fields() Fields {
	return Fields{
		Title:  d.Title,
		Topics: append([]string(nil), d.Topics...),
		Body:   d.Body,
		Reward: d.Reward,
		Upvote: d.Upvote,
	}
}

func (d *Draft) Apply(f Fields) {
	d.Title = f.Title
	d.Topics = NormalizeTopics(f.Topics)
	d.Body = f.Body
	if _, ok := ParseRewardOption(string(f.Reward)); ok {
		d.Reward = f.Reward
	}
	d.Upvote = f.Upvote
}

func (f Fields) Clone() Fields {
	f.Topics = append([]string(nil), f.Topics...)
	return f
}

// NormalizeTopics splits entries on spaces and commas and drops duplicates while
// keeping the order the user entered them in. Case is preserved so validation can
// reject it.
func NormalizeTopics(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, raw := range in {
		for _, t := range SplitTopics(raw) {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func SplitTopics(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
