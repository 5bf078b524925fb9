// Package reply renders the direct-message text sent back to users after
// a recognition attempt.
package reply

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ebreen/luffe/internal/store"
)

// NoMatchMessage is sent when the fingerprinting service has no result
// for the reel's audio.
const NoMatchMessage = "Sorry, I couldn't identify the song in that reel. The audio may be too short, too noisy, or not in the catalog."

var titleCaser = cases.Title(language.English, cases.NoLower)

// Song renders the reply for an identified track. Empty metadata fields
// are omitted rather than rendered blank.
func Song(song *store.Song) string {
	if song == nil {
		return NoMatchMessage
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Track: %s", cleanTitle(song.Title))
	if artist := strings.TrimSpace(song.Artist); artist != "" {
		fmt.Fprintf(&b, "\nArtist: %s", cleanTitle(artist))
	}
	if album := strings.TrimSpace(song.Album); album != "" {
		fmt.Fprintf(&b, "\nAlbum: %s", cleanTitle(album))
	}
	if date := strings.TrimSpace(song.ReleaseDate); date != "" {
		fmt.Fprintf(&b, "\nRelease Date: %s", date)
	}
	if link := strings.TrimSpace(song.SpotifyLink); link != "" {
		fmt.Fprintf(&b, "\nSpotify: %s", link)
	}
	return b.String()
}

// WithHistory appends the user's most recent identifications beneath the
// song reply. The current song is expected to already be the newest
// history entry and is skipped to avoid repeating it.
func WithHistory(song *store.Song, history []store.HistoryEntry) string {
	body := Song(song)
	lines := historyLines(song, history)
	if len(lines) == 0 {
		return body
	}
	return body + "\n\nYour recent finds:\n" + strings.Join(lines, "\n")
}

func historyLines(current *store.Song, history []store.HistoryEntry) []string {
	lines := make([]string, 0, len(history))
	skippedCurrent := false
	for _, entry := range history {
		if current != nil && !skippedCurrent && entry.SongID == current.ID {
			skippedCurrent = true
			continue
		}
		line := "- " + cleanTitle(entry.Title)
		if artist := strings.TrimSpace(entry.Artist); artist != "" {
			line += " by " + cleanTitle(artist)
		}
		lines = append(lines, line)
	}
	return lines
}

// cleanTitle normalises shouting metadata (all-caps or all-lower) into
// title case while leaving mixed-case strings untouched.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if s == strings.ToUpper(s) || s == strings.ToLower(s) {
		return titleCaser.String(strings.ToLower(s))
	}
	return s
}
