package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CachedSong looks up the song previously recognized for a reel. The boolean
// reports whether a cache entry exists.
func (s *Store) CachedSong(ctx context.Context, reelID string) (*Song, bool, error) {
	reelID = strings.TrimSpace(reelID)
	if reelID == "" {
		return nil, false, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT songs.id, songs.title, songs.artist, songs.album, songs.release_date, songs.spotify_link
         FROM reel_cache
         JOIN songs ON reel_cache.song_id = songs.id
         WHERE reel_cache.reel_id = ?`,
		reelID,
	)

	var song Song
	if err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.ReleaseDate, &song.SpotifyLink); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return &song, true, nil
}

// CacheReel records that a reel resolved to a song. The insert is a no-op when
// an entry already exists, so two workers racing on the same reel cannot
// produce conflicting entries and the first write wins.
func (s *Store) CacheReel(ctx context.Context, reelID string, songID int64) error {
	reelID = strings.TrimSpace(reelID)
	if reelID == "" {
		return errors.New("reel id cannot be empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO reel_cache (reel_id, song_id, cached_at) VALUES (?, ?, ?)
         ON CONFLICT (reel_id) DO NOTHING`,
		reelID,
		songID,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("cache reel: %w", err)
	}
	return nil
}

// RemoveCachedReel deletes one cache entry. Operator tooling uses this when a
// cached identification turns out to be wrong.
func (s *Store) RemoveCachedReel(ctx context.Context, reelID string) error {
	reelID = strings.TrimSpace(reelID)
	if reelID == "" {
		return errors.New("reel id cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reel_cache WHERE reel_id = ?`, reelID); err != nil {
		return fmt.Errorf("remove cached reel: %w", err)
	}
	return nil
}

// CacheEntries lists cached reels, newest first.
func (s *Store) CacheEntries(ctx context.Context, limit int) ([]CacheEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT reel_cache.reel_id, reel_cache.cached_at,
                songs.id, songs.title, songs.artist, songs.album, songs.release_date, songs.spotify_link
         FROM reel_cache
         JOIN songs ON reel_cache.song_id = songs.id
         ORDER BY reel_cache.cached_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var (
			entry CacheEntry
			raw   string
		)
		if err := rows.Scan(&entry.ReelID, &raw, &entry.Song.ID, &entry.Song.Title, &entry.Song.Artist, &entry.Song.Album, &entry.Song.ReleaseDate, &entry.Song.SpotifyLink); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entry.CachedAt = parseTime(raw)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}
