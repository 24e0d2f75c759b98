// Package history keeps a local log of submissions, pastes and downloads in
// a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "tmc/internal/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Kind names the operation an entry records.
type Kind string

const (
	KindSubmit   Kind = "submit"
	KindPaste    Kind = "paste"
	KindDownload Kind = "download"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded operation.
type Entry struct {
	ID         int64
	Kind       Kind
	ExerciseID int
	URL        string
	Status     string
	CreatedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT    NOT NULL,
	exercise_id INTEGER NOT NULL,
	url         TEXT    NOT NULL DEFAULT '',
	status      TEXT    NOT NULL DEFAULT '',
	created_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS history_created_at ON history(created_at);
`

// Store is a handle to the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and schema when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "history path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "create history directory", err)
	}

	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "open history db", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "ping history db", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "create history schema", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// buildDSN creates a read-write WAL DSN for the given path.
func buildDSN(path string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(3000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an entry. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (kind, exercise_id, url, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(e.Kind), e.ExerciseID, e.URL, e.Status, e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, apperrors.New(apperrors.CodeHistoryFailed, "record history entry", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, apperrors.New(apperrors.CodeHistoryFailed, "read history id", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, exercise_id, url, status, created_at FROM history ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "query history", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			created string
		)
		if err := rows.Scan(&e.ID, &kind, &e.ExerciseID, &e.URL, &e.Status, &created); err != nil {
			return nil, apperrors.New(apperrors.CodeHistoryFailed, "scan history row", err)
		}
		e.Kind = Kind(kind)
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, apperrors.New(apperrors.CodeParseFailed, fmt.Sprintf("parse created_at %q", created), err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.New(apperrors.CodeHistoryFailed, "iterate history", err)
	}
	return entries, nil
}
