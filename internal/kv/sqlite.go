package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
    key TEXT PRIMARY KEY,
    rev TEXT NOT NULL,
    body BLOB NOT NULL
);
`

// SQLiteStore persists records in a single SQLite table. Keys compare with
// the BINARY collation, so range scans follow byte order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn. Use ":memory:" for an
// ephemeral store.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*Record, error) {
	r := &Record{Key: key}
	err := s.db.QueryRowContext(ctx, `SELECT rev, body FROM records WHERE key = ?`, key).Scan(&r.Rev, &r.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("sqlite get", err)
	}
	return r, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec *Record) (string, error) {
	rev := NextRevision(rec.Rev)
	var (
		res sql.Result
		err error
	)
	if rec.Rev == "" {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO records (key, rev, body) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			rec.Key, rev, rec.Body)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE records SET rev = ?, body = ? WHERE key = ? AND rev = ?`,
			rev, rec.Body, rec.Key, rec.Rev)
	}
	if err != nil {
		return "", unavailable("sqlite put", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", unavailable("sqlite put", err)
	}
	if n == 0 {
		return "", ErrConflict
	}
	return rev, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key, rev string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ? AND rev = ?`, key, rev)
	if err != nil {
		return unavailable("sqlite remove", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("sqlite remove", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	return ErrConflict
}

func (s *SQLiteStore) Range(ctx context.Context, start, end string) ([]*Record, error) {
	query := `SELECT key, rev, body FROM records WHERE key >= ? ORDER BY key`
	args := []any{start}
	if end != "" {
		query = `SELECT key, rev, body FROM records WHERE key >= ? AND key < ? ORDER BY key`
		args = append(args, end)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("sqlite range", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Key, &r.Rev, &r.Body); err != nil {
			return nil, unavailable("sqlite range", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("sqlite range", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
