package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteStore keeps history in a local SQLite file.
type sqliteStore struct {
	db *sql.DB
}

// openSQLite opens (or creates) the SQLite history database.
func openSQLite(path string) (Store, error) {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".video-summarizer", "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		platform   TEXT NOT NULL,
		video_id   TEXT NOT NULL,
		url        TEXT NOT NULL,
		lang       TEXT,
		style      TEXT NOT NULL,
		summary    TEXT NOT NULL,
		source     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SaveSummary(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (platform, video_id, url, lang, style, summary, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Platform, e.VideoID, e.URL, e.Lang, e.Style, e.Summary, e.Source, e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *sqliteStore) RecentSummaries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, platform, video_id, url, lang, style, summary, source, created_at
		 FROM summaries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Platform, &e.VideoID, &e.URL, &e.Lang, &e.Style, &e.Summary, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
