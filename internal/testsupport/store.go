package testsupport

import (
	"context"
	"testing"

	"shutter/internal/config"
	"shutter/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Enqueue inserts a queued item for tests using the provided store.
func Enqueue(t testing.TB, store *queue.Store, jobID, url, viewport string) *queue.Item {
	t.Helper()

	item, err := store.Enqueue(context.Background(), jobID, url, viewport)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return item
}
