package testsupport

import (
	"testing"

	"setlint/internal/config"
	"setlint/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close history store: %v", err)
		}
	})
	return store
}
