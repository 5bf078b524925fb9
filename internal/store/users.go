package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertUser records contact from an Instagram account. First contact creates
// the row with an interaction count of one; repeat contact bumps the count,
// refreshes the username and last-seen timestamp, and preserves first_seen_at.
func (s *Store) UpsertUser(ctx context.Context, instagramID, username string) (*User, error) {
	instagramID = strings.TrimSpace(instagramID)
	if instagramID == "" {
		return nil, errors.New("instagram id cannot be empty")
	}
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (instagram_id, username, first_seen_at, last_seen_at, interaction_count)
         VALUES (?, ?, ?, ?, 1)
         ON CONFLICT (instagram_id) DO UPDATE SET
             username = excluded.username,
             last_seen_at = excluded.last_seen_at,
             interaction_count = interaction_count + 1`,
		instagramID,
		strings.TrimSpace(username),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return s.GetUser(ctx, instagramID)
}

// GetUser fetches a user by Instagram account ID.
func (s *Store) GetUser(ctx context.Context, instagramID string) (*User, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, instagram_id, username, first_seen_at, last_seen_at, interaction_count
         FROM users WHERE instagram_id = ?`,
		strings.TrimSpace(instagramID),
	)

	var (
		user     User
		firstRaw string
		lastRaw  string
	)
	if err := row.Scan(&user.ID, &user.InstagramID, &user.Username, &firstRaw, &lastRaw, &user.InteractionCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.FirstSeenAt = parseTime(firstRaw)
	user.LastSeenAt = parseTime(lastRaw)
	return &user, nil
}
