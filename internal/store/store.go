// Package store persists a history of finished summaries.
// SQLite is the default backend; Postgres is used when DATABASE_URL is set.
package store

import (
	"context"
	"time"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
)

// Entry is one row of summary history.
type Entry struct {
	ID        int64  `json:"id"`
	Platform  string `json:"platform"`
	VideoID   string `json:"videoId"`
	URL       string `json:"url"`
	Lang      string `json:"lang,omitempty"`
	Style     string `json:"style"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
}

// Store is the history backend.
type Store interface {
	SaveSummary(ctx context.Context, e Entry) (int64, error)
	RecentSummaries(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Package-level singleton, set from main. Nil means history is disabled.
var current Store

// Set installs the package-level store instance.
func Set(s Store) { current = s }

// Get returns the package-level store instance (may be nil).
func Get() Store { return current }

// Open picks the backend: Postgres when databaseURL is set, SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return openPostgres(ctx, databaseURL)
	}
	return openSQLite(sqlitePath)
}

// FromSummary converts an engine summary into a history entry.
func FromSummary(s engine.Summary) Entry {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return Entry{
		Platform:  string(s.Platform),
		VideoID:   s.VideoID,
		URL:       s.URL,
		Lang:      s.Lang,
		Style:     string(s.Style),
		Summary:   s.Summary,
		Source:    s.Source,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}

// Record saves a summary to the installed store, if any. Failures are
// reported by the caller's logger; history is best-effort.
func Record(ctx context.Context, s engine.Summary) error {
	st := Get()
	if st == nil {
		return nil
	}
	_, err := st.SaveSummary(ctx, FromSummary(s))
	if err == nil {
		engine.IncrHistoryWrites()
	}
	return err
}
