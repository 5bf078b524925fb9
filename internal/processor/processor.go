package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/media"
	"github.com/ebreen/luffe/internal/notifications"
	"github.com/ebreen/luffe/internal/queue"
	"github.com/ebreen/luffe/internal/recognize"
	"github.com/ebreen/luffe/internal/reply"
	"github.com/ebreen/luffe/internal/retry"
	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
	"github.com/ebreen/luffe/internal/store"
)

// Recognizer identifies the song in an audio file.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (recognize.Result, error)
}

// ExtractFunc pulls the audio track out of a downloaded video.
type ExtractFunc func(ctx context.Context, binary, videoPath string) (string, error)

// Stats is a snapshot of the pipeline counters since startup.
type Stats struct {
	Processed int64
	CacheHits int64
	NoMatches int64
	Failures  int64
}

// Processor runs the worker pool that drains the reel queue.
type Processor struct {
	cfg        *config.Config
	store      *store.Store
	client     source.Client
	recognizer Recognizer
	extract    ExtractFunc
	notifier   notifications.Service
	queue      *queue.Queue[source.Event]
	logger     *slog.Logger
	retry      retry.Policy

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	processed atomic.Int64
	cacheHits atomic.Int64
	noMatches atomic.Int64
	failures  atomic.Int64
}

// Option configures optional Processor behavior.
type Option func(*Processor)

// WithExtractFunc overrides the audio extraction step, primarily for tests.
func WithExtractFunc(fn ExtractFunc) Option {
	return func(p *Processor) {
		if fn != nil {
			p.extract = fn
		}
	}
}

// New constructs a Processor. The retry policy for recognition calls
// comes from the AudD configuration section.
func New(cfg *config.Config, st *store.Store, client source.Client, recognizer Recognizer, notifier notifications.Service, q *queue.Queue[source.Event], logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	p := &Processor{
		cfg:        cfg,
		store:      st,
		client:     client,
		recognizer: recognizer,
		extract:    media.ExtractAudio,
		notifier:   notifier,
		queue:      q,
		logger:     logger.With(logging.String(logging.FieldComponent, "processor")),
		retry: retry.Policy{
			MaxAttempts: cfg.AudD.RetryAttempts,
			BaseDelay:   time.Duration(cfg.AudD.RetryBaseMS) * time.Millisecond,
			Multiplier:  cfg.AudD.RetryFactor,
			Retryable:   services.IsTransient,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the configured number of workers. Workers exit when the
// queue is closed and drained; Stop waits for them.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("processor already running")
	}
	workers := p.cfg.Processor.Workers
	if workers <= 0 {
		workers = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.runWorker(runCtx)
	}
	return nil
}

// Stop cancels in-flight work, closes the queue so parked workers wake,
// and waits for them to drain whatever remains. Closing the queue ahead
// of time is fine; Close is idempotent.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.queue.Close()
	p.wg.Wait()
}

// Snapshot returns the current pipeline counters.
func (p *Processor) Snapshot() Stats {
	return Stats{
		Processed: p.processed.Load(),
		CacheHits: p.cacheHits.Load(),
		NoMatches: p.noMatches.Load(),
		Failures:  p.failures.Load(),
	}
}

func (p *Processor) runWorker(ctx context.Context) {
	defer p.wg.Done()
	// Workers drain the queue even during shutdown; cancellation reaches
	// in-flight work through the context instead.
	for {
		event, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		p.Process(ctx, event)
	}
}

// Process runs one reel event through the full pipeline. Failures leave
// the database untouched and send no reply; the sender can simply share
// the reel again.
func (p *Processor) Process(ctx context.Context, event source.Event) {
	if !event.HasReel() {
		return
	}
	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	ctx = services.WithEventID(ctx, event.MessageID)
	ctx = services.WithReelID(ctx, event.Reel.MediaID)
	logger := p.logger.With(
		logging.String(logging.FieldCorrelationID, correlationID),
		logging.String(logging.FieldReelID, event.Reel.MediaID),
		logging.String(logging.FieldSenderID, event.SenderID),
	)

	song, err := p.identify(ctx, logger, event)
	if err != nil {
		p.failures.Add(1)
		logger.Error("reel processing failed", logging.Error(err))
		if errors.Is(err, services.ErrAuth) {
			_ = p.notifier.NotifyAuthFailure(ctx, err)
		} else {
			_ = p.notifier.NotifyError(ctx, err, "reel processing")
		}
		return
	}
	if song == nil {
		// The sender still counts as an interaction; only songs, cache, and
		// history stay untouched on a no-match.
		if _, err := p.store.UpsertUser(ctx, event.SenderID, event.SenderUsername); err != nil {
			p.failures.Add(1)
			logger.Error("recording user failed", logging.Error(err))
			return
		}
		p.noMatches.Add(1)
		p.processed.Add(1)
		logger.Info("no match for reel audio")
		p.sendReply(ctx, logger, event.SenderID, reply.NoMatchMessage)
		return
	}

	text, err := p.record(ctx, event, song)
	if err != nil {
		p.failures.Add(1)
		logger.Error("persisting identification failed", logging.Error(err))
		_ = p.notifier.NotifyError(ctx, err, "reel processing")
		return
	}

	p.processed.Add(1)
	logger.Info("song identified",
		logging.String("title", song.Title),
		logging.String("artist", song.Artist),
	)
	_ = p.notifier.NotifySongIdentified(ctx, song.Title, song.Artist, event.SenderUsername)
	p.sendReply(ctx, logger, event.SenderID, text)
}

// identify resolves the reel to a song, via the cache when possible. A
// nil song with nil error means the audio is conclusively unidentified.
func (p *Processor) identify(ctx context.Context, logger *slog.Logger, event source.Event) (*store.Song, error) {
	cached, hit, err := p.store.CachedSong(ctx, event.Reel.MediaID)
	if err != nil {
		return nil, err
	}
	if hit {
		p.cacheHits.Add(1)
		logger.Info("cache hit", logging.String(logging.FieldStage, "cache_lookup"))
		return cached, nil
	}

	workDir, err := os.MkdirTemp(p.cfg.Paths.StagingDir, "reel-")
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "processor", "identify", "create staging directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("staging cleanup failed", logging.Error(err), logging.String("dir", workDir))
		}
	}()

	videoPath, err := p.client.DownloadReel(ctx, event.Reel, workDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("reel downloaded", logging.String(logging.FieldStage, "download"))

	audioPath, err := p.extract(ctx, p.cfg.FFmpegBinary(), videoPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("audio extracted", logging.String(logging.FieldStage, "extract"))

	result, err := retry.DoValue(ctx, p.retry, func(ctx context.Context) (recognize.Result, error) {
		return p.recognizer.Recognize(ctx, audioPath)
	})
	if err != nil {
		return nil, err
	}
	if !result.Matched {
		return nil, nil
	}
	return &store.Song{
		Title:       result.Song.Title,
		Artist:      result.Song.Artist,
		Album:       result.Song.Album,
		ReleaseDate: result.Song.ReleaseDate,
		SpotifyLink: result.Song.SpotifyLink,
	}, nil
}

// record persists the identification and renders the reply text. The
// song may come from the cache and already have an ID; EnsureSong keeps
// both paths idempotent.
func (p *Processor) record(ctx context.Context, event source.Event, song *store.Song) (string, error) {
	user, err := p.store.UpsertUser(ctx, event.SenderID, event.SenderUsername)
	if err != nil {
		return "", err
	}
	persisted, err := p.store.EnsureSong(ctx, *song)
	if err != nil {
		return "", err
	}
	if err := p.store.CacheReel(ctx, event.Reel.MediaID, persisted.ID); err != nil {
		return "", err
	}
	if err := p.store.AppendHistory(ctx, user.ID, persisted.ID); err != nil {
		return "", err
	}
	history, err := p.store.History(ctx, event.SenderID, p.cfg.Processor.HistoryLimit)
	if err != nil {
		return "", err
	}
	return reply.WithHistory(persisted, history), nil
}

// sendReply delivers the message and logs delivery failures. The
// identification is already persisted at this point, so a failed reply
// is not a pipeline failure.
func (p *Processor) sendReply(ctx context.Context, logger *slog.Logger, senderID, text string) {
	if err := p.client.SendMessage(ctx, senderID, text); err != nil {
		logger.Warn("reply delivery failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("user %s will not see the result", senderID)),
		)
	}
}
