package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/processor"
	"github.com/ebreen/luffe/internal/store"
)

// StatsSource reports pipeline counters. Implemented by the processor.
type StatsSource interface {
	Snapshot() processor.Stats
}

// Server serves the local status API.
type Server struct {
	store      *store.Store
	stats      StatsSource
	queueDepth func() int
	logger     *slog.Logger
	started    time.Time
	listener   net.Listener
	httpSrv    *http.Server
}

// New constructs a Server bound to addr when started. queueDepth may be
// nil when no queue is attached.
func New(st *store.Store, stats StatsSource, queueDepth func() int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		store:      st,
		stats:      stats,
		queueDepth: queueDepth,
		logger:     logger.With(logging.String(logging.FieldComponent, "api")),
		started:    time.Now().UTC(),
	}
}

// Start begins listening on addr. It returns once the listener is bound;
// request serving happens in the background.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status api serve failed", logging.Error(err))
		}
	}()
	s.logger.Info("status api listening", logging.String("addr", listener.Addr().String()))
	return nil
}

// Addr reports the bound address, useful when the port was chosen by the OS.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type statusResponse struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	QueueDepth    int   `json:"queue_depth"`
	Pipeline      struct {
		Processed int64 `json:"processed"`
		CacheHits int64 `json:"cache_hits"`
		NoMatches int64 `json:"no_matches"`
		Failures  int64 `json:"failures"`
	} `json:"pipeline"`
	Store struct {
		Users           int64 `json:"users"`
		Songs           int64 `json:"songs"`
		Identifications int64 `json:"identifications"`
		CachedReels     int64 `json:"cached_reels"`
	} `json:"store"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	resp.UptimeSeconds = int64(time.Since(s.started).Seconds())
	if s.queueDepth != nil {
		resp.QueueDepth = s.queueDepth()
	}
	if s.stats != nil {
		snapshot := s.stats.Snapshot()
		resp.Pipeline.Processed = snapshot.Processed
		resp.Pipeline.CacheHits = snapshot.CacheHits
		resp.Pipeline.NoMatches = snapshot.NoMatches
		resp.Pipeline.Failures = snapshot.Failures
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "store stats unavailable")
		return
	}
	resp.Store.Users = stats.Users
	resp.Store.Songs = stats.Songs
	resp.Store.Identifications = stats.Identifications
	resp.Store.CachedReels = stats.CachedReels
	s.writeJSON(w, resp)
}

type historyItem struct {
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	RequestedAt time.Time `json:"requested_at"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		s.writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	entries, err := s.store.History(r.Context(), user, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	items := make([]historyItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, historyItem{
			Title:       entry.Title,
			Artist:      entry.Artist,
			RequestedAt: entry.RequestedAt,
		})
	}
	s.writeJSON(w, map[string]any{"user": user, "history": items})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
