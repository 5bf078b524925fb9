package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/ebreen/luffe/internal/api"
	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/notifications"
	"github.com/ebreen/luffe/internal/poller"
	"github.com/ebreen/luffe/internal/processor"
	"github.com/ebreen/luffe/internal/queue"
	"github.com/ebreen/luffe/internal/recognize"
	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
	"github.com/ebreen/luffe/internal/source/instagram"
	"github.com/ebreen/luffe/internal/store"
)

// Daemon coordinates the background services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	client   source.Client
	notifier notifications.Service

	events    *queue.Queue[source.Event]
	poller    *poller.Poller
	processor *processor.Processor
	apiServer *api.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The Instagram
// client and AudD recognizer are built from the configuration.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client, err := instagram.New(cfg.Instagram)
	if err != nil {
		return nil, err
	}
	recognizer, err := recognize.New(cfg.AudD)
	if err != nil {
		return nil, err
	}

	notifier := notifications.NewService(cfg)
	events := queue.New[source.Event]()
	lockPath := filepath.Join(cfg.Paths.DataDir, "luffed.lock")

	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		client:    client,
		notifier:  notifier,
		events:    events,
		poller:    poller.New(cfg, client, events, logger),
		processor: processor.New(cfg, st, client, recognizer, notifier, events, logger),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	d.apiServer = api.New(st, d.processor, events.Len, logger)
	return d, nil
}

// Start verifies the session, acquires the daemon lock, and launches the
// background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another luffe daemon instance is already running")
	}

	if err := d.client.Verify(ctx); err != nil {
		_ = d.lock.Unlock()
		if errors.Is(err, services.ErrAuth) {
			_ = d.notifier.NotifyAuthFailure(ctx, err)
		}
		return fmt.Errorf("verify session: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.processor.Start(runCtx); err != nil {
		d.teardown()
		return fmt.Errorf("start processor: %w", err)
	}
	if err := d.poller.Start(runCtx); err != nil {
		d.processorShutdown()
		d.teardown()
		return fmt.Errorf("start poller: %w", err)
	}
	if err := d.apiServer.Start(d.cfg.Paths.APIBind); err != nil {
		d.poller.Stop()
		d.processorShutdown()
		d.teardown()
		return fmt.Errorf("start status api: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("luffe daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.apiServer.Addr()),
	)
	_ = d.notifier.NotifyStartup(ctx, d.cfg.Instagram.Username)
	return nil
}

// Stop halts the poller first so no new events arrive, drains the
// workers, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.poller.Stop()
	d.processorShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.apiServer.Stop(shutdownCtx); err != nil {
		d.logger.Warn("status api shutdown failed", logging.Error(err))
	}

	d.teardown()
	d.running.Store(false)
	d.logger.Info("luffe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// processorShutdown closes the queue so workers drain and exit, then
// waits for them.
func (d *Daemon) processorShutdown() {
	d.events.Close()
	d.processor.Stop()
}

func (d *Daemon) teardown() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
