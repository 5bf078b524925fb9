package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/ebreen/luffe/internal/api"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/processor"
	"github.com/ebreen/luffe/internal/store"
	"github.com/ebreen/luffe/internal/testsupport"
)

type staticStats struct {
	stats processor.Stats
}

func (s staticStats) Snapshot() processor.Stats { return s.stats }

func newServer(t *testing.T) (*api.Server, *store.Store) {
	t.Helper()
	st, err := store.OpenPath(filepath.Join(t.TempDir(), "luffe.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	server := api.New(st, staticStats{stats: processor.Stats{Processed: 7, CacheHits: 3}}, func() int { return 2 }, logging.NewNop())
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop(context.Background()) })
	return server, st
}

func seedHistory(t *testing.T, st *store.Store) {
	t.Helper()
	testsupport.SeedIdentification(t, st, "42", "monkey.d", "reel-1", "Movement", "Hozier")
}

func TestStatusEndpoint(t *testing.T) {
	server, st := newServer(t)
	seedHistory(t, st)

	resp, err := http.Get("http://" + server.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d", resp.StatusCode)
	}

	var decoded struct {
		QueueDepth int `json:"queue_depth"`
		Pipeline   struct {
			Processed int64 `json:"processed"`
			CacheHits int64 `json:"cache_hits"`
		} `json:"pipeline"`
		Store struct {
			Users int64 `json:"users"`
			Songs int64 `json:"songs"`
		} `json:"store"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Pipeline.Processed != 7 || decoded.Pipeline.CacheHits != 3 {
		t.Fatalf("unexpected pipeline stats %+v", decoded.Pipeline)
	}
	if decoded.QueueDepth != 2 {
		t.Fatalf("unexpected queue depth %d", decoded.QueueDepth)
	}
	if decoded.Store.Users != 1 || decoded.Store.Songs != 1 {
		t.Fatalf("unexpected store stats %+v", decoded.Store)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server, st := newServer(t)
	seedHistory(t, st)

	resp, err := http.Get("http://" + server.Addr() + "/api/history?user=42")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d", resp.StatusCode)
	}

	var decoded struct {
		User    string `json:"user"`
		History []struct {
			Title  string `json:"title"`
			Artist string `json:"artist"`
		} `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.User != "42" || len(decoded.History) != 1 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
	if decoded.History[0].Title != "Movement" {
		t.Fatalf("unexpected history %+v", decoded.History)
	}
}

func TestHistoryRequiresUser(t *testing.T) {
	server, _ := newServer(t)

	resp, err := http.Get("http://" + server.Addr() + "/api/history")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	server, _ := newServer(t)

	resp, err := http.Get("http://" + server.Addr() + "/api/history?user=42&limit=0")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
