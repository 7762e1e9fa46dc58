package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/amir-mohammad-HP/cronwatch/internal/config"
	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
	"github.com/amir-mohammad-HP/cronwatch/internal/signals"
	"github.com/amir-mohammad-HP/cronwatch/internal/store"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/internal/worker"
	"github.com/amir-mohammad-HP/cronwatch/pkg/docker"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
	"github.com/amir-mohammad-HP/cronwatch/pkg/monitor"
	"github.com/amir-mohammad-HP/cronwatch/pkg/shutdown"
)

type App struct {
	config        *types.Config
	logger        logger.Logger
	clock         clock.Clock
	store         store.Store
	registry      *job.Registry
	worker        *worker.Worker
	monitor       *worker.MonitorWorker
	shutdown      *shutdown.Manager
	signalHandler *signals.Handler
	closers       []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

type options struct {
	clock    clock.Clock
	executor job.Executor
	prober   monitor.Prober
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithExecutor replaces the executor selected by executor.kind.
func WithExecutor(e job.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

func WithProber(p monitor.Prober) Option {
	return func(o *options) {
		o.prober = p
	}
}

// New builds every component from cfg, restores persisted jobs and seeds
// the jobs listed in the config.
func New(ctx context.Context, cfg *types.Config, log logger.Logger, opts ...Option) (*App, error) {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := config.Location(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	a := &App{
		config:        cfg,
		logger:        log,
		clock:         o.clock,
		shutdown:      shutdown.NewManager(log, cfg.Shutdown.Timeout),
		signalHandler: signals.NewHandler(log),
	}

	a.store, err = store.Open(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.closers = append(a.closers, namedCloser{"store", a.store.Close})

	exec := o.executor
	if exec == nil {
		if exec, err = a.newExecutor(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	a.registry = job.NewRegistry(
		job.WithClock(a.clock),
		job.WithLocation(loc),
		job.WithMaxJobs(cfg.Scheduler.MaxJobs),
		job.WithJobTimeout(cfg.Scheduler.JobTimeout),
		job.WithExecutor(exec),
		job.WithLogger(log),
		job.WithStore(a.store),
	)
	a.restore(ctx)
	if err := a.seed(); err != nil {
		a.close()
		return nil, err
	}

	a.worker = worker.New(cfg.Scheduler, a.registry, worker.WithClock(a.clock), worker.WithLogger(log))
	a.monitor = worker.NewMonitorWorker(cfg.Monitor, a.newMonitor(o.prober), log)
	return a, nil
}

func (a *App) newExecutor(ctx context.Context) (job.Executor, error) {
	switch strings.ToLower(a.config.Executor.Kind) {
	case "docker":
		cli, err := docker.NewClient(ctx, a.config.Docker, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, namedCloser{"docker", cli.Close})
		return docker.NewExecutor(cli, a.config.Docker, a.logger), nil
	default:
		return job.LogExecutor{Logger: a.logger}, nil
	}
}

func (a *App) newMonitor(prober monitor.Prober) *monitor.Monitor {
	mc := a.config.Monitor
	if prober == nil {
		prober = monitor.NewHTTPProber(monitor.WithProbeTimeout(mc.Timeout))
	}
	mon := monitor.New(
		monitor.WithClock(a.clock),
		monitor.WithProber(prober),
		monitor.WithHealthPath(mc.HealthPath),
		monitor.WithTimeout(mc.Timeout),
		monitor.WithCheckNowLimit(mc.CheckNowRate, mc.CheckNowBurst),
		monitor.WithLogger(a.logger),
	)
	if mc.Endpoint != "" {
		if err := mon.SetEndpoint(mc.Endpoint); err != nil {
			a.logger.Warn("monitor endpoint ignored: %s", err)
		}
	}
	return mon
}

func (a *App) restore(ctx context.Context) {
	jobs, err := a.store.Load(ctx)
	if err != nil {
		a.logger.Warn("some stored jobs could not be read: %s", err)
	}
	if len(jobs) == 0 {
		return
	}
	if err := a.registry.Restore(jobs); err != nil {
		a.logger.Warn("some stored jobs were skipped: %s", err)
	}
}

// seed adds config jobs that are not in the registry yet. Existing jobs
// keep their stored state.
func (a *App) seed() error {
	for _, jc := range a.config.Jobs {
		spec, err := schedule.Parse(jc.Schedule)
		if err != nil {
			return fmt.Errorf("job %q: %w", jc.Name, err)
		}

		_, err = a.registry.Add(job.New(jc.Name, spec, []byte(jc.Payload)))
		if errors.Is(err, job.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed job: %w", err)
		}
		if jc.Enabled != nil && !*jc.Enabled {
			if _, err := a.registry.Toggle(strings.TrimSpace(jc.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run starts the scheduler and the monitor and blocks until a signal, ctx
// cancellation or Shutdown, then runs the ordered shutdown tasks.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := a.registry.Stats()
	a.logger.WithFields(map[string]any{
		"jobs":    st.Total,
		"enabled": st.Enabled,
	}).Info("Starting %s", a.config.AppName)
	if !st.NextWake.IsZero() {
		a.logger.Info("next job %s at %s", st.NextJob, st.NextWake.Format(time.RFC3339))
	}

	a.shutdown.RegisterTask("scheduler", a.worker.Stop)
	a.shutdown.RegisterTask("monitor", a.monitor.Stop)
	for _, c := range a.closers {
		a.shutdown.RegisterTask(c.name, c.close)
	}
	a.shutdown.RegisterTask("logger", func() error {
		// stdout and stderr often refuse fsync
		_ = a.logger.Sync()
		return nil
	})

	if err := a.worker.Start(ctx); err != nil {
		return err
	}
	if err := a.monitor.Start(ctx); err != nil {
		_ = a.worker.Stop()
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.signalHandler.Handle(gctx, a.shutdown.Initiate)
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			a.shutdown.Initiate()
		case <-a.shutdown.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return a.shutdown.Wait(context.Background())
	})

	err := g.Wait()
	a.logger.Info("Application shutdown complete")
	return err
}

// Shutdown asks a running App to stop.
func (a *App) Shutdown() {
	a.shutdown.Initiate()
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.logger.Warn("failed to close %s: %s", c.name, err)
		}
	}
}

// WatchConfig applies log level changes from the config file without a
// restart.
func (a *App) WatchConfig(loader *config.Loader) {
	loader.Watch(func(cfg *types.Config, err error) {
		if err != nil {
			a.logger.Warn("ignoring config change: %s", err)
			return
		}
		level := logger.ParseLogLevel(config.LogLevel(cfg))
		if level != a.logger.GetLevel() {
			a.logger.SetLevel(level)
			a.logger.Info("log level changed to %s", level)
		}
	})
}

func (a *App) Registry() *job.Registry {
	return a.registry
}

func (a *App) Monitor() *monitor.Monitor {
	return a.monitor.Monitor()
}

func (a *App) Worker() *worker.Worker {
	return a.worker
}
