// Package store is the SQLite-backed collaborator surface the engine and
// the bookmark processor depend on: account/post id lookups, reblog counts,
// and bookmark rows. Applying normalized field lists to the posts table is
// the writer's job, not ours.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS hive_accounts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS hive_posts (
  id INTEGER PRIMARY KEY,
  author TEXT NOT NULL,
  permlink TEXT NOT NULL,
  UNIQUE(author, permlink)
);
CREATE TABLE IF NOT EXISTS hive_reblogs (
  account TEXT NOT NULL,
  post_id INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  PRIMARY KEY(account, post_id)
);
CREATE INDEX IF NOT EXISTS idx_reblogs_post ON hive_reblogs(post_id);
CREATE TABLE IF NOT EXISTS hive_bookmarks (
  account_id INTEGER NOT NULL,
  post_id INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  PRIMARY KEY(account_id, post_id)
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// UpsertAccount ensures an account row exists and returns its id.
func (s *Store) UpsertAccount(ctx context.Context, name string) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hive_accounts (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return 0, fmt.Errorf("upsert account %s: %w", name, err)
	}
	return s.AccountID(ctx, name)
}

// AccountID returns the id for name, or 0 when the account is unknown.
func (s *Store) AccountID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM hive_accounts WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("account id %s: %w", name, err)
	}
	return id, nil
}

// InsertPost registers a post id under its author/permlink.
func (s *Store) InsertPost(ctx context.Context, id int64, author, permlink string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hive_posts (id, author, permlink) VALUES (?, ?, ?)`,
		id, author, permlink)
	if err != nil {
		return fmt.Errorf("insert post %s/%s: %w", author, permlink, err)
	}
	return nil
}

// PostID resolves author/permlink to a post id, or 0 when unknown.
func (s *Store) PostID(ctx context.Context, author, permlink string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`SELECT id FROM hive_posts WHERE author = ? AND permlink = ?`, author, permlink)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("post id %s/%s: %w", author, permlink, err)
	}
	return id, nil
}

// AddReblog records that account reblogged post_id. Repeats are no-ops.
func (s *Store) AddReblog(ctx context.Context, account string, postID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hive_reblogs (account, post_id, created_at) VALUES (?, ?, ?)`,
		account, postID, at.Unix())
	if err != nil {
		return fmt.Errorf("add reblog: %w", err)
	}
	return nil
}

// CountReblogs implements score.ReblogCounter.
func (s *Store) CountReblogs(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(1) FROM hive_reblogs WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("count reblogs for post %d: %w", postID, err)
	}
	return n, nil
}

// AddBookmark stores a bookmark row. Repeats are no-ops.
func (s *Store) AddBookmark(ctx context.Context, accountID, postID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hive_bookmarks (account_id, post_id, created_at) VALUES (?, ?, ?)`,
		accountID, postID, at.Unix())
	if err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

// RemoveBookmark deletes a bookmark row if present.
func (s *Store) RemoveBookmark(ctx context.Context, accountID, postID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM hive_bookmarks WHERE account_id = ? AND post_id = ?`, accountID, postID)
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}

// CountBookmarks returns how many accounts bookmarked a post.
func (s *Store) CountBookmarks(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(1) FROM hive_bookmarks WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("count bookmarks for post %d: %w", postID, err)
	}
	return n, nil
}
