package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"draftpad/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaVersion = 2

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI autosave while a CLI command reads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}
	steps := map[int][]string{
		1: {
			`CREATE TABLE IF NOT EXISTS drafts (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL DEFAULT '',
				topics_json TEXT NOT NULL DEFAULT '[]',
				body TEXT NOT NULL DEFAULT '',
				reward TEXT NOT NULL DEFAULT '50',
				upvote INTEGER NOT NULL DEFAULT 1,
				created_at_unixms INTEGER NOT NULL,
				updated_at_unixms INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated_at_unixms);`,
		},
		2: {
			`ALTER TABLE drafts ADD COLUMN permlink TEXT NOT NULL DEFAULT '';`,
			`ALTER TABLE drafts ADD COLUMN published_at_unixms INTEGER;`,
		},
	}
	for v := version + 1; v <= schemaVersion; v++ {
		for _, st := range steps[v] {
			if _, err := db.ExecContext(ctx, st); err != nil {
				return fmt.Errorf("migrate to v%d: %w", v, err)
			}
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, v)); err != nil {
			return err
		}
	}
	return nil
}

const draftColumns = `id, title, topics_json, body, reward, upvote, permlink, created_at_unixms, updated_at_unixms, published_at_unixms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(r rowScanner) (model.Draft, error) {
	var (
		d          model.Draft
		topicsJSON string
		reward     string
		upvote     int
		created    int64
		updated    int64
		published  sql.NullInt64
	)
	if err := r.Scan(&d.ID, &d.Title, &topicsJSON, &d.Body, &reward, &upvote, &d.Permlink, &created, &updated, &published); err != nil {
		return model.Draft{}, err
	}
	if err := json.Unmarshal([]byte(topicsJSON), &d.Topics); err != nil {
		return model.Draft{}, fmt.Errorf("draft %s: topics: %w", d.ID, err)
	}
	if d.Topics == nil {
		d.Topics = []string{}
	}
	d.Reward = model.RewardOption(reward)
	d.Upvote = upvote != 0
	d.CreatedAt = time.UnixMilli(created).UTC()
	d.UpdatedAt = time.UnixMilli(updated).UTC()
	if published.Valid {
		t := time.UnixMilli(published.Int64).UTC()
		d.PublishedAt = &t
	}
	return d, nil
}

// CreateDraft stores a new empty draft with default reward and upvote settings.
func (s Store) CreateDraft(ctx context.Context) (model.Draft, error) {
	d := model.NewDraft(uuid.NewString(), time.Now().UTC())
	if err := s.insertDraft(ctx, d); err != nil {
		return model.Draft{}, err
	}
	return d, nil
}

func (s Store) insertDraft(ctx context.Context, d model.Draft) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	topics, err := json.Marshal(nonNilTopics(d.Topics))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO drafts(`+draftColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, string(topics), d.Body, string(d.Reward), boolToInt(d.Upvote), d.Permlink,
		d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli(), unixMilliOrNil(d.PublishedAt))
	return err
}

func (s Store) GetDraft(ctx context.Context, id string) (model.Draft, error) {
	id = strings.TrimSpace(id)
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Draft{}, err
	}
	defer db.Close()

	d, err := scanDraft(db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Draft{}, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	return d, err
}

// ListDrafts returns drafts, most recently updated first.
func (s Store) ListDrafts(ctx context.Context) ([]model.Draft, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY updated_at_unixms DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveFields applies an editor snapshot to a draft and bumps its UpdatedAt.
func (s Store) SaveFields(ctx context.Context, id string, f model.Fields) (model.Draft, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Draft{}, err
	}
	defer db.Close()

	d, err := scanDraft(db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Draft{}, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Draft{}, err
	}
	d.Apply(f)
	d.UpdatedAt = time.Now().UTC()

	topics, err := json.Marshal(nonNilTopics(d.Topics))
	if err != nil {
		return model.Draft{}, err
	}
	_, err = db.ExecContext(ctx, `UPDATE drafts SET title = ?, topics_json = ?, body = ?, reward = ?, upvote = ?, updated_at_unixms = ? WHERE id = ?`,
		d.Title, string(topics), d.Body, string(d.Reward), boolToInt(d.Upvote), d.UpdatedAt.UnixMilli(), d.ID)
	if err != nil {
		return model.Draft{}, err
	}
	return d, nil
}

// MarkPublished records the permlink a draft was published under.
func (s Store) MarkPublished(ctx context.Context, id, permlink string, at time.Time) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE drafts SET permlink = ?, published_at_unixms = ? WHERE id = ?`, permlink, at.UTC().UnixMilli(), id)
	if err != nil {
		return err
	}
	return requireOneRow(res, id)
}

func (s Store) DeleteDraft(ctx context.Context, id string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	return requireOneRow(res, id)
}

// KnownTopics returns every topic used across drafts, most used first.
func (s Store) KnownTopics(ctx context.Context) ([]string, error) {
	drafts, err := s.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, d := range drafts {
		for _, t := range d.Topics {
			counts[t]++
		}
	}
	out := make([]string, 0, len(counts))
	for t := range counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out, nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	return nil
}

func nonNilTopics(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixMilliOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMilli()
}
