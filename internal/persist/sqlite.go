package persist

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version. The snapshots table in
// schema.sql is version 1; there is no earlier layout.
const schemaVersion = 1

// DefaultSnapshotName is the row key the store reads and writes.
const DefaultSnapshotName = "gradebook"

// ErrSchemaTooNew is returned when a database was stamped by a newer build.
var ErrSchemaTooNew = errors.New("sqlite schema is newer than this build")

// SQLite stores the snapshot in a local SQLite database.
type SQLite struct {
	db   *sql.DB
	name string
}

// dsn carries the connection settings as go-sqlite3 query parameters so that
// every pooled connection gets them, not just the first one.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	return "file:" + path + "?" + q.Encode()
}

// OpenSQLite opens the database at path, creating the snapshots table on
// first use. Reopening an existing gradebook database is a no-op.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; the store already serialises its commits
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLite{db: db, name: DefaultSnapshotName}, nil
}

// ensureSchema creates the snapshots table and stamps user_version on a
// fresh file. A file already stamped with schemaVersion is left alone.
func ensureSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	switch {
	case version > schemaVersion:
		return fmt.Errorf("%w: file is v%d, supported v%d", ErrSchemaTooNew, version, schemaVersion)
	case version == schemaVersion:
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamp user_version: %w", err)
	}
	return tx.Commit()
}

// Load returns the stored snapshot body.
func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(body), nil
}

// Save upserts the snapshot row.
func (s *SQLite) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, body, bytes, saved_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			bytes = excluded.bytes,
			saved_at = excluded.saved_at
	`, s.name, string(data), len(data))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for inspection in tests and diagnostics.
func (s *SQLite) DB() *sql.DB {
	return s.db
}
