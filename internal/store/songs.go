package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EnsureSong inserts a song unless an identical (title, artist) row already
// exists, and returns the persisted row either way. Concurrent workers racing
// on the same song resolve to a single row; the unique constraint carries the
// dedup, not caller-side locking. Only the title is required: fingerprint
// results sometimes come back without an artist.
func (s *Store) EnsureSong(ctx context.Context, song Song) (*Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	if song.Title == "" {
		return nil, errors.New("song title cannot be empty")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO songs (title, artist, album, release_date, spotify_link)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (title, artist) DO NOTHING`,
		song.Title,
		song.Artist,
		strings.TrimSpace(song.Album),
		strings.TrimSpace(song.ReleaseDate),
		strings.TrimSpace(song.SpotifyLink),
	)
	if err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}

	return s.songByTitleArtist(ctx, song.Title, song.Artist)
}

// GetSong fetches a song by row ID.
func (s *Store) GetSong(ctx context.Context, id int64) (*Song, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, artist, album, release_date, spotify_link FROM songs WHERE id = ?`,
		id,
	)
	return scanSong(row)
}

func (s *Store) songByTitleArtist(ctx context.Context, title, artist string) (*Song, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, artist, album, release_date, spotify_link
         FROM songs WHERE title = ? AND artist = ?`,
		title,
		artist,
	)
	return scanSong(row)
}

func scanSong(row *sql.Row) (*Song, error) {
	var song Song
	if err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.ReleaseDate, &song.SpotifyLink); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan song: %w", err)
	}
	return &song, nil
}
