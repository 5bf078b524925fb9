package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ebreen/luffe/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenPath(filepath.Join(t.TempDir(), "luffe.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertUserFirstAndRepeatContact(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, "12345", "monkey.d")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if first.InteractionCount != 1 {
		t.Fatalf("expected count 1 on first contact, got %d", first.InteractionCount)
	}
	if first.FirstSeenAt.IsZero() {
		t.Fatal("expected first_seen_at to be set")
	}

	time.Sleep(5 * time.Millisecond)
	second, err := s.UpsertUser(ctx, "12345", "monkey.d.luffe")
	if err != nil {
		t.Fatalf("UpsertUser repeat: %v", err)
	}
	if second.InteractionCount != 2 {
		t.Fatalf("expected count 2 on repeat contact, got %d", second.InteractionCount)
	}
	if second.Username != "monkey.d.luffe" {
		t.Fatalf("expected refreshed username, got %q", second.Username)
	}
	if !second.FirstSeenAt.Equal(first.FirstSeenAt) {
		t.Fatalf("first_seen_at changed: %v -> %v", first.FirstSeenAt, second.FirstSeenAt)
	}
	if !second.LastSeenAt.After(first.LastSeenAt) {
		t.Fatalf("last_seen_at did not advance: %v -> %v", first.LastSeenAt, second.LastSeenAt)
	}
}

func TestGetUserMissingReturnsNil(t *testing.T) {
	s := newStore(t)
	user, err := s.GetUser(context.Background(), "absent")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for unknown user, got %+v", user)
	}
}

func TestEnsureSongDeduplicatesByTitleArtist(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.EnsureSong(ctx, store.Song{Title: "Binks' Sake", Artist: "Brook", Album: "OST"})
	if err != nil {
		t.Fatalf("EnsureSong: %v", err)
	}
	second, err := s.EnsureSong(ctx, store.Song{Title: "Binks' Sake", Artist: "Brook", Album: "different album"})
	if err != nil {
		t.Fatalf("EnsureSong repeat: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected identical song row, got IDs %d and %d", first.ID, second.ID)
	}
	if second.Album != "OST" {
		t.Fatalf("expected first write to win, got album %q", second.Album)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Songs != 1 {
		t.Fatalf("expected 1 song row, got %d", stats.Songs)
	}
}

func TestEnsureSongAcceptsMissingArtist(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.EnsureSong(ctx, store.Song{Title: "Overtaken"})
	if err != nil {
		t.Fatalf("EnsureSong without artist: %v", err)
	}
	second, err := s.EnsureSong(ctx, store.Song{Title: "Overtaken"})
	if err != nil {
		t.Fatalf("EnsureSong repeat: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected identical song row, got IDs %d and %d", first.ID, second.ID)
	}

	if _, err := s.EnsureSong(ctx, store.Song{Artist: "Brook"}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestReelCacheInsertOnceReadMany(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	song, err := s.EnsureSong(ctx, store.Song{Title: "Song A", Artist: "Artist A"})
	if err != nil {
		t.Fatalf("EnsureSong: %v", err)
	}
	other, err := s.EnsureSong(ctx, store.Song{Title: "Song B", Artist: "Artist B"})
	if err != nil {
		t.Fatalf("EnsureSong B: %v", err)
	}

	if _, found, err := s.CachedSong(ctx, "v1"); err != nil || found {
		t.Fatalf("expected empty cache, found=%v err=%v", found, err)
	}

	if err := s.CacheReel(ctx, "v1", song.ID); err != nil {
		t.Fatalf("CacheReel: %v", err)
	}
	// A losing racer writing a different song must not clobber the entry.
	if err := s.CacheReel(ctx, "v1", other.ID); err != nil {
		t.Fatalf("CacheReel second write: %v", err)
	}

	cached, found, err := s.CachedSong(ctx, "v1")
	if err != nil {
		t.Fatalf("CachedSong: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if cached.ID != song.ID || cached.Title != "Song A" {
		t.Fatalf("expected first write to win, got %+v", cached)
	}
}

func TestRemoveCachedReel(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	song, err := s.EnsureSong(ctx, store.Song{Title: "Song A", Artist: "Artist A"})
	if err != nil {
		t.Fatalf("EnsureSong: %v", err)
	}
	if err := s.CacheReel(ctx, "v1", song.ID); err != nil {
		t.Fatalf("CacheReel: %v", err)
	}
	if err := s.RemoveCachedReel(ctx, "v1"); err != nil {
		t.Fatalf("RemoveCachedReel: %v", err)
	}
	if _, found, err := s.CachedSong(ctx, "v1"); err != nil || found {
		t.Fatalf("expected entry removed, found=%v err=%v", found, err)
	}
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	user, err := s.UpsertUser(ctx, "12345", "monkey.d")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	titles := []string{"First", "Second", "Third"}
	for _, title := range titles {
		song, err := s.EnsureSong(ctx, store.Song{Title: title, Artist: "Artist"})
		if err != nil {
			t.Fatalf("EnsureSong %s: %v", title, err)
		}
		if err := s.AppendHistory(ctx, user.ID, song.ID); err != nil {
			t.Fatalf("AppendHistory %s: %v", title, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := s.History(ctx, "12345", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Third" || entries[1].Title != "Second" {
		t.Fatalf("expected newest first, got %q then %q", entries[0].Title, entries[1].Title)
	}
}

func TestCacheEntriesListsJoinedSongs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	song, err := s.EnsureSong(ctx, store.Song{Title: "Song A", Artist: "Artist A", SpotifyLink: "https://open.spotify.com/track/x"})
	if err != nil {
		t.Fatalf("EnsureSong: %v", err)
	}
	if err := s.CacheReel(ctx, "v1", song.ID); err != nil {
		t.Fatalf("CacheReel: %v", err)
	}

	entries, err := s.CacheEntries(ctx, 10)
	if err != nil {
		t.Fatalf("CacheEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ReelID != "v1" || entries[0].Song.Title != "Song A" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if entries[0].CachedAt.IsZero() {
		t.Fatal("expected cached_at to be set")
	}
}
