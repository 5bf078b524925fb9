package reply_test

import (
	"strings"
	"testing"

	"github.com/ebreen/luffe/internal/reply"
	"github.com/ebreen/luffe/internal/store"
)

func TestSongFullMetadata(t *testing.T) {
	got := reply.Song(&store.Song{
		Title:       "Bohemian Rhapsody",
		Artist:      "Queen",
		Album:       "A Night at the Opera",
		ReleaseDate: "1975-10-31",
		SpotifyLink: "https://open.spotify.com/track/abc",
	})
	want := strings.Join([]string{
		"Track: Bohemian Rhapsody",
		"Artist: Queen",
		"Album: A Night at the Opera",
		"Release Date: 1975-10-31",
		"Spotify: https://open.spotify.com/track/abc",
	}, "\n")
	if got != want {
		t.Fatalf("reply mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestSongOmitsEmptyFields(t *testing.T) {
	got := reply.Song(&store.Song{Title: "Movement", Artist: "Hozier"})
	if strings.Contains(got, "Album:") || strings.Contains(got, "Release Date:") || strings.Contains(got, "Spotify:") {
		t.Fatalf("empty fields must be omitted, got %q", got)
	}
}

func TestSongWithoutArtist(t *testing.T) {
	got := reply.Song(&store.Song{Title: "Overtaken"})
	if got != "Track: Overtaken" {
		t.Fatalf("artist line must be omitted, got %q", got)
	}

	withHistory := reply.WithHistory(
		&store.Song{ID: 1, Title: "Overtaken"},
		[]store.HistoryEntry{
			{SongID: 1, Title: "Overtaken"},
			{SongID: 2, Title: "Memories"},
		},
	)
	if !strings.Contains(withHistory, "- Memories") || strings.Contains(withHistory, " by ") {
		t.Fatalf("history line must drop the artist clause, got %q", withHistory)
	}
}

func TestSongNormalisesShoutingMetadata(t *testing.T) {
	got := reply.Song(&store.Song{Title: "TAKE ON ME", Artist: "a-ha"})
	if !strings.Contains(got, "Track: Take On Me") {
		t.Fatalf("expected title-cased track, got %q", got)
	}
	// Mixed case is already intentional and stays untouched.
	got = reply.Song(&store.Song{Title: "mxmtoon song", Artist: "mxmtoon"})
	if !strings.Contains(got, "Artist: Mxmtoon") {
		t.Fatalf("all-lower artist should be title-cased, got %q", got)
	}
	got = reply.Song(&store.Song{Title: "iRobot", Artist: "Jon Bellion"})
	if !strings.Contains(got, "Track: iRobot") {
		t.Fatalf("mixed-case title must stay untouched, got %q", got)
	}
}

func TestSongNilIsNoMatch(t *testing.T) {
	if got := reply.Song(nil); got != reply.NoMatchMessage {
		t.Fatalf("unexpected no-match text %q", got)
	}
}

func TestWithHistorySkipsCurrentSong(t *testing.T) {
	song := &store.Song{ID: 3, Title: "Movement", Artist: "Hozier"}
	history := []store.HistoryEntry{
		{SongID: 3, Title: "Movement", Artist: "Hozier"},
		{SongID: 2, Title: "Cherry Wine", Artist: "Hozier"},
		{SongID: 1, Title: "Work Song", Artist: "Hozier"},
	}

	got := reply.WithHistory(song, history)
	if !strings.Contains(got, "Your recent finds:") {
		t.Fatalf("expected history section, got %q", got)
	}
	if strings.Count(got, "Movement") != 1 {
		t.Fatalf("current song must not repeat in history, got %q", got)
	}
	if !strings.Contains(got, "- Cherry Wine by Hozier") || !strings.Contains(got, "- Work Song by Hozier") {
		t.Fatalf("missing history lines in %q", got)
	}
}

func TestWithHistoryEmptyHistory(t *testing.T) {
	song := &store.Song{ID: 1, Title: "Movement", Artist: "Hozier"}
	got := reply.WithHistory(song, []store.HistoryEntry{{SongID: 1, Title: "Movement", Artist: "Hozier"}})
	if strings.Contains(got, "Your recent finds:") {
		t.Fatalf("first-ever find should not carry a history section, got %q", got)
	}
}
