package recognize_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/recognize"
	"github.com/ebreen/luffe/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reel-1.mp3")
	if err := os.WriteFile(path, []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func newClient(t *testing.T, handler http.HandlerFunc) *recognize.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := recognize.New(config.AudD{
		APIToken: "tok",
		BaseURL:  server.URL,
		Return:   "apple_music,spotify",
	}, recognize.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestRecognizeMatch(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("api_token"); got != "tok" {
			t.Errorf("api_token = %q", got)
		}
		if got := r.FormValue("return"); got != "apple_music,spotify" {
			t.Errorf("return = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
		}
		_, _ = w.Write([]byte(`{"status":"success","result":{
          "title":"Bohemian Rhapsody","artist":"Queen","album":"A Night at the Opera",
          "release_date":"1975-10-31",
          "spotify":{"external_urls":{"spotify":"https://open.spotify.com/track/abc"}}
        }}`))
	})

	result, err := client.Recognize(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if !result.Matched || result.Song == nil {
		t.Fatalf("expected match, got %+v", result)
	}
	if result.Song.Title != "Bohemian Rhapsody" || result.Song.Artist != "Queen" {
		t.Fatalf("unexpected song %+v", result.Song)
	}
	if result.Song.SpotifyLink != "https://open.spotify.com/track/abc" {
		t.Fatalf("unexpected spotify link %q", result.Song.SpotifyLink)
	}
}

func TestRecognizeNoMatch(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","result":null}`))
	})

	result, err := client.Recognize(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if result.Matched || result.Song != nil {
		t.Fatalf("expected no-match, got %+v", result)
	}
}

func TestRecognizeAPIError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":{"error_code":300,"error_message":"fingerprinting failed"}}`))
	})

	_, err := client.Recognize(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrTransientService) {
		t.Fatalf("expected transient service error, got %v", err)
	}
}

func TestRecognizeAuthErrorCode(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":{"error_code":901,"error_message":"api token expired"}}`))
	})

	_, err := client.Recognize(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestRecognizeServerFailureIsTransient(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Recognize(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrTransientService) {
		t.Fatalf("expected transient service error, got %v", err)
	}
}

func TestRecognizeMissingAudioFile(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Recognize(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := recognize.New(config.AudD{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
