package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const DefaultTickInterval = 60 * time.Second

// Worker drives the registry: on every tick it runs the jobs that are due.
type Worker struct {
	registry *job.Registry
	clock    clock.Clock
	interval time.Duration
	enabled  bool
	logger   logger.Logger

	// mu is held across Start and the whole of Stop so a restart never
	// overlaps the previous loop.
	mu       sync.Mutex
	running  bool
	shutdown chan struct{}
	done     chan struct{}
	stopping atomic.Bool

	lastMu   sync.RWMutex
	lastTick TickReport
}

type Option func(*Worker)

func WithClock(c clock.Clock) Option {
	return func(w *Worker) {
		w.clock = c
	}
}

func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		w.logger = l
	}
}

func New(cfg types.SchedulerConfig, registry *job.Registry, opts ...Option) *Worker {
	w := &Worker{
		registry: registry,
		clock:    clock.New(),
		interval: cfg.TickInterval,
		enabled:  cfg.Enabled,
	}
	if w.interval <= 0 {
		w.interval = DefaultTickInterval
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.NewNop()
	}
	w.logger = w.logger.WithField("component", "scheduler")
	return w
}

// Start launches the tick loop. It is a no-op when already running or when
// the scheduler is disabled. The ticker exists once Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.enabled {
		w.logger.Info("scheduler disabled, not starting")
		return nil
	}
	if w.running {
		select {
		case <-w.done:
			// loop ended with its context; allow a fresh start
		default:
			return nil
		}
	}

	w.stopping.Store(false)
	w.shutdown = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	ticker := w.clock.Ticker(w.interval)
	go w.run(ctx, ticker, w.shutdown, w.done)

	w.logger.Info("scheduler started, tick every %s", w.interval)
	return nil
}

func (w *Worker) run(ctx context.Context, ticker *clock.Ticker, shutdown, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("scheduler received context cancellation")
			return
		case <-shutdown:
			w.logger.Debug("scheduler received shutdown signal")
			return
		case <-ticker.C:
			w.Tick(ctx, w.clock.Now())
		}
	}
}

// Stop halts the loop and waits for an in-flight tick. Jobs not yet
// dispatched by that tick stay due. Safe to call in any state.
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.stopping.Store(true)
	close(w.shutdown)
	<-w.done

	w.logger.Info("scheduler stopped")
	return nil
}

func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// LastTick returns the report of the most recent tick.
func (w *Worker) LastTick() TickReport {
	w.lastMu.RLock()
	defer w.lastMu.RUnlock()
	return w.lastTick
}
