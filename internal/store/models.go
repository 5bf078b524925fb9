package store

import "time"

// User represents a known Instagram account that has contacted the bot.
type User struct {
	ID               int64
	InstagramID      string
	Username         string
	FirstSeenAt      time.Time
	LastSeenAt       time.Time
	InteractionCount int64
}

// Song represents a recognized track. Two reels may reference the same song.
type Song struct {
	ID          int64
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	SpotifyLink string
}

// HistoryEntry is one completed identification for a user, newest first when
// returned from History.
type HistoryEntry struct {
	SongID      int64
	Title       string
	Artist      string
	RequestedAt time.Time
}

// CacheEntry maps a reel's stable media ID to a previously recognized song.
type CacheEntry struct {
	ReelID   string
	Song     Song
	CachedAt time.Time
}

// Stats aggregates counters for the status API.
type Stats struct {
	Users           int64
	Songs           int64
	Identifications int64
	CachedReels     int64
}
