package testsupport

import (
	"testing"

	"mediaforge/internal/config"
	"mediaforge/internal/history"
	"mediaforge/internal/profile"
)

// MustOpenProfiles opens the profile store named by cfg.
func MustOpenProfiles(t testing.TB, cfg *config.Config) *profile.Store {
	t.Helper()

	store, err := profile.Open(cfg.Paths.ProfilesFile)
	if err != nil {
		t.Fatalf("profile.Open: %v", err)
	}
	return store
}

// MustOpenHistory opens the history journal named by cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
