package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AppendHistory records one completed identification. History rows are never
// updated or deleted.
func (s *Store) AppendHistory(ctx context.Context, userID, songID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_songs (user_id, song_id, requested_at) VALUES (?, ?, ?)`,
		userID,
		songID,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns a user's most recent identifications, newest first.
func (s *Store) History(ctx context.Context, instagramID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT songs.id, songs.title, songs.artist, user_songs.requested_at
         FROM user_songs
         JOIN users ON user_songs.user_id = users.id
         JOIN songs ON user_songs.song_id = songs.id
         WHERE users.instagram_id = ?
         ORDER BY user_songs.requested_at DESC
         LIMIT ?`,
		strings.TrimSpace(instagramID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry HistoryEntry
			raw   string
		)
		if err := rows.Scan(&entry.SongID, &entry.Title, &entry.Artist, &raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.RequestedAt = parseTime(raw)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
