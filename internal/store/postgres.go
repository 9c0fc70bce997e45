package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore keeps history in Postgres, for deployments where the local
// filesystem is ephemeral.
type pgStore struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, databaseURL string) (Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("history: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("history: create pgx pool: %w", err)
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS summaries (
		id         BIGSERIAL PRIMARY KEY,
		platform   TEXT NOT NULL,
		video_id   TEXT NOT NULL,
		url        TEXT NOT NULL,
		lang       TEXT,
		style      TEXT NOT NULL,
		summary    TEXT NOT NULL,
		source     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	return &pgStore{pool: pool}, nil
}

func (s *pgStore) SaveSummary(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO summaries (platform, video_id, url, lang, style, summary, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		e.Platform, e.VideoID, e.URL, e.Lang, e.Style, e.Summary, e.Source, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return id, nil
}

func (s *pgStore) RecentSummaries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, platform, video_id, url, COALESCE(lang, ''), style, summary, source, created_at
		 FROM summaries ORDER BY id DESC LIMIT $1`, limit)
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

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}
