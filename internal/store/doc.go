// Package store persists luffe's durable state in SQLite: known users, every
// song ever recognized, the per-user identification history, and the
// content-addressed reel cache that maps a reel's stable media ID to a
// previously resolved song.
//
// Cache entries are written once and never expire; a reel's song does not
// change. Song rows are deduplicated on (title, artist) and history rows are
// append-only. User rows use upsert semantics keyed by the Instagram account
// ID.
//
// Treat this package as the single source of truth for persistence semantics;
// schema changes get a new file under migrations/.
package store
