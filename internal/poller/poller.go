package poller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/queue"
	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
)

// Poller drives the inbox watch loop. Reel events newer than the cursor
// go onto the work queue; the cursor only ever moves forward.
type Poller struct {
	cfg    *config.Config
	client source.Client
	queue  *queue.Queue[source.Event]
	logger *slog.Logger

	messageInterval time.Duration
	pendingInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	cursor  time.Time
}

// New constructs a Poller. The cursor starts a grace window in the past
// so reels shared shortly before startup are still picked up.
func New(cfg *config.Config, client source.Client, q *queue.Queue[source.Event], logger *slog.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	grace := time.Duration(cfg.Poller.GraceWindowSeconds) * time.Second
	return &Poller{
		cfg:             cfg,
		client:          client,
		queue:           q,
		logger:          logger.With(logging.String(logging.FieldComponent, "poller")),
		messageInterval: time.Duration(cfg.Poller.MessageIntervalSeconds) * time.Second,
		pendingInterval: time.Duration(cfg.Poller.PendingIntervalSeconds) * time.Second,
		cursor:          time.Now().Add(-grace).UTC(),
	}
}

// Start launches the message and pending-inbox loops.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("poller already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(2)
	go p.runMessages(runCtx)
	go p.runPending(runCtx)
	return nil
}

// Stop terminates the loops and waits for them to exit.
func (p *Poller) Stop() {
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
	p.wg.Wait()
}

// Cursor reports the current high-water mark, for status output.
func (p *Poller) Cursor() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Poller) runMessages(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.messageInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollMessages(ctx)
		}
	}
}

func (p *Poller) runPending(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.pendingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweepPending(ctx)
		}
	}
}

// pollMessages fetches the inbox and enqueues the newest unseen reel
// event. Fetch failures end the cycle; the loop itself never dies.
func (p *Poller) pollMessages(ctx context.Context) {
	events, err := p.client.ListMessages(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		level := slog.LevelWarn
		if errors.Is(err, services.ErrAuth) {
			level = slog.LevelError
		}
		p.logger.Log(ctx, level, "inbox poll failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "inbox_poll_failed"),
		)
		return
	}

	fresh := p.freshReelEvents(events)
	p.advanceCursor(events)
	if len(fresh) == 0 {
		return
	}

	// Only the newest reel per cycle goes to the queue; at a one second
	// poll interval anything older has effectively been superseded.
	newest := fresh[len(fresh)-1]
	if dropped := len(fresh) - 1; dropped > 0 {
		p.logger.Warn("multiple new reels in one poll cycle, keeping newest",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldReelID, newest.Reel.MediaID),
			logging.String(logging.FieldEventType, "reels_superseded"),
		)
	}
	p.queue.Enqueue(newest)
	p.logger.Info("reel queued",
		logging.String(logging.FieldEventID, newest.MessageID),
		logging.String(logging.FieldReelID, newest.Reel.MediaID),
		logging.String(logging.FieldSenderID, newest.SenderID),
	)
}

// freshReelEvents keeps reel events strictly after the cursor, skipping
// the bot's own outgoing messages. Input is oldest-first and stays so.
func (p *Poller) freshReelEvents(events []source.Event) []source.Event {
	p.mu.Lock()
	cursor := p.cursor
	p.mu.Unlock()

	self := strings.ToLower(strings.TrimSpace(p.cfg.Instagram.Username))
	var fresh []source.Event
	for _, event := range events {
		if !event.Timestamp.After(cursor) {
			continue
		}
		if self != "" && strings.ToLower(event.SenderUsername) == self {
			continue
		}
		if !event.HasReel() {
			continue
		}
		fresh = append(fresh, event)
	}
	return fresh
}

// advanceCursor moves the high-water mark to the newest timestamp seen.
// It never moves backwards, even if the source returns stale data.
func (p *Poller) advanceCursor(events []source.Event) {
	var max time.Time
	for _, event := range events {
		if event.Timestamp.After(max) {
			max = event.Timestamp
		}
	}
	if max.IsZero() {
		return
	}
	p.mu.Lock()
	if max.After(p.cursor) {
		p.cursor = max
	}
	p.mu.Unlock()
}

// sweepPending accepts waiting message requests so their reels show up
// in the regular inbox on the next cycle.
func (p *Poller) sweepPending(ctx context.Context) {
	pending, err := p.client.ListPendingRequests(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("pending inbox sweep failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "pending_sweep_failed"),
		)
		return
	}
	for _, request := range pending {
		if err := p.client.AcceptRequest(ctx, request.ThreadID); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("accept pending request failed",
				logging.Error(err),
				logging.String("thread_id", request.ThreadID),
			)
			continue
		}
		p.logger.Info("pending request accepted",
			logging.String("thread_id", request.ThreadID),
			logging.String(logging.FieldSenderID, request.RequesterID),
		)
	}
}
