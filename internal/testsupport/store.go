package testsupport

import (
	"context"
	"testing"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedIdentification records one user, song, cache entry, and history
// row so read paths have something to return.
func SeedIdentification(t testing.TB, st *store.Store, instagramID, username, reelID, title, artist string) *store.Song {
	t.Helper()

	ctx := context.Background()
	user, err := st.UpsertUser(ctx, instagramID, username)
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	song, err := st.EnsureSong(ctx, store.Song{Title: title, Artist: artist})
	if err != nil {
		t.Fatalf("ensure song: %v", err)
	}
	if err := st.CacheReel(ctx, reelID, song.ID); err != nil {
		t.Fatalf("cache reel: %v", err)
	}
	if err := st.AppendHistory(ctx, user.ID, song.ID); err != nil {
		t.Fatalf("append history: %v", err)
	}
	return song
}
