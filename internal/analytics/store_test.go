package analytics_test

import (
	"context"
	"testing"
	"time"

	"shutter/internal/analytics"
	"shutter/internal/testsupport"
)

func mustOpen(t *testing.T, opts ...analytics.Option) *analytics.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := analytics.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("analytics.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestTrackViewIncrementsCounter(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.TrackView(ctx, "https://example.com/pricing", "page"); err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
	}
	if err := store.TrackView(ctx, "https://example.com/blog", "post"); err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}

	pages, err := store.TopPages(ctx, 10, 0)
	if err != nil {
		t.Fatalf("TopPages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].PageURL != "https://example.com/pricing" || pages[0].ViewCount != 3 {
		t.Fatalf("unexpected top page: %#v", pages[0])
	}
	if pages[1].PageType != "post" {
		t.Fatalf("expected post type, got %q", pages[1].PageType)
	}
}

func TestTrackViewRejectsEmptyURL(t *testing.T) {
	store := mustOpen(t)
	if err := store.TrackView(context.Background(), "  ", "page"); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestTopPagesClampsLimit(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	for _, url := range []string{"https://a.example/", "https://b.example/", "https://c.example/"} {
		if err := store.TrackView(ctx, url, "page"); err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
	}

	pages, err := store.TopPages(ctx, 0, 0)
	if err != nil {
		t.Fatalf("TopPages failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("limit below minimum must clamp to 1, got %d pages", len(pages))
	}
}

func TestTopPagesHonorsDaysWindow(t *testing.T) {
	current := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	clock := &current
	store := mustOpen(t, analytics.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	stale := current.Add(-30 * 24 * time.Hour)
	clock = &stale
	if err := store.TrackView(ctx, "https://example.com/old", "page"); err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}

	clock = &current
	if err := store.TrackView(ctx, "https://example.com/new", "page"); err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}

	pages, err := store.TopPages(ctx, 10, 7)
	if err != nil {
		t.Fatalf("TopPages failed: %v", err)
	}
	if len(pages) != 1 || pages[0].PageURL != "https://example.com/new" {
		t.Fatalf("expected only the recent page, got %#v", pages)
	}

	all, err := store.TopPages(ctx, 10, 0)
	if err != nil {
		t.Fatalf("TopPages failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both pages without a window, got %d", len(all))
	}
}

func TestAggregateStats(t *testing.T) {
	current := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	clock := &current
	store := mustOpen(t, analytics.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	stale := current.Add(-10 * 24 * time.Hour)
	clock = &stale
	if err := store.TrackView(ctx, "https://example.com/old", "page"); err != nil {
		t.Fatalf("TrackView failed: %v", err)
	}

	clock = &current
	for i := 0; i < 2; i++ {
		if err := store.TrackView(ctx, "https://example.com/new", "page"); err != nil {
			t.Fatalf("TrackView failed: %v", err)
		}
	}

	stats, err := store.AggregateStats(ctx)
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.TotalPages != 2 || stats.TotalViews != 3 {
		t.Fatalf("unexpected totals: %#v", stats)
	}
	if stats.TodayViews != 2 || stats.WeekViews != 2 {
		t.Fatalf("unexpected windowed views: %#v", stats)
	}
}
