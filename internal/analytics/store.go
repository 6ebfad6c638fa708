// Package analytics persists page-view counters alongside the screenshot
// queue so captured pages can be ranked by traffic.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shutter/internal/config"
)

// TopPages clamps its limit into this range.
const (
	MinTopPagesLimit = 1
	MaxTopPagesLimit = 100
)

// Option configures the store.
type Option func(*Store)

// WithClock injects the time source used for view timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store manages page-view persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the analytics database.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.AnalyticsDatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS page_views (
            page_url TEXT PRIMARY KEY,
            view_count INTEGER NOT NULL DEFAULT 0,
            page_type TEXT NOT NULL DEFAULT 'page',
            last_viewed TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_page_views_count ON page_views(view_count)`,
		`CREATE INDEX IF NOT EXISTS idx_page_views_last_viewed ON page_views(last_viewed)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// TrackView records one view of a page, creating the counter row on first
// sight. The page type is set on creation and never changed by later views.
func (s *Store) TrackView(ctx context.Context, pageURL, pageType string) error {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return errors.New("page url required")
	}
	if strings.TrimSpace(pageType) == "" {
		pageType = "page"
	}

	timestamp := s.now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO page_views (page_url, view_count, page_type, last_viewed)
         VALUES (?, 1, ?, ?)
         ON CONFLICT(page_url) DO UPDATE SET
             view_count = view_count + 1,
             last_viewed = excluded.last_viewed`,
		pageURL,
		pageType,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("track page view: %w", err)
	}
	return nil
}

// Page is one ranked page-view counter.
type Page struct {
	PageURL    string
	ViewCount  int
	PageType   string
	LastViewed time.Time
}

// TopPages returns the most viewed pages. The limit is clamped into
// [MinTopPagesLimit, MaxTopPagesLimit]; a days value greater than zero only
// counts pages viewed within that window.
func (s *Store) TopPages(ctx context.Context, limit, days int) ([]Page, error) {
	if limit < MinTopPagesLimit {
		limit = MinTopPagesLimit
	}
	if limit > MaxTopPagesLimit {
		limit = MaxTopPagesLimit
	}

	query := `SELECT page_url, view_count, page_type, last_viewed FROM page_views`
	args := []any{}
	if days > 0 {
		cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
		query += ` WHERE last_viewed >= ?`
		args = append(args, cutoff.Format(time.RFC3339Nano))
	}
	query += ` ORDER BY view_count DESC, last_viewed DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var page Page
		var lastViewed string
		if err := rows.Scan(&page.PageURL, &page.ViewCount, &page.PageType, &lastViewed); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, lastViewed); err == nil {
			page.LastViewed = parsed
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Stats aggregates page-view counters for diagnostic output.
type Stats struct {
	TotalPages int
	TotalViews int
	TodayViews int
	WeekViews  int
}

// AggregateStats summarizes the analytics table. Today and week figures sum
// the lifetime counters of pages last viewed in the window, matching how the
// ranked listing weighs recency.
func (s *Store) AggregateStats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	now := s.now().UTC()

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(view_count), 0) FROM page_views`)
	if err := row.Scan(&stats.TotalPages, &stats.TotalViews); err != nil {
		return stats, fmt.Errorf("aggregate totals: %w", err)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	row = s.db.QueryRowContext(
		ctx,
		`SELECT COALESCE(SUM(view_count), 0) FROM page_views WHERE last_viewed >= ?`,
		todayStart.Format(time.RFC3339Nano),
	)
	if err := row.Scan(&stats.TodayViews); err != nil {
		return stats, fmt.Errorf("aggregate today: %w", err)
	}

	weekStart := now.Add(-7 * 24 * time.Hour)
	row = s.db.QueryRowContext(
		ctx,
		`SELECT COALESCE(SUM(view_count), 0) FROM page_views WHERE last_viewed >= ?`,
		weekStart.Format(time.RFC3339Nano),
	)
	if err := row.Scan(&stats.WeekViews); err != nil {
		return stats, fmt.Errorf("aggregate week: %w", err)
	}

	return stats, nil
}
