package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const persistTimeout = 5 * time.Second

// Store persists the registry contents. Save receives the full job list in
// insertion order after every mutation.
type Store interface {
	Save(ctx context.Context, jobs []Job) error
}

type entry struct {
	// runMu serializes executions of one job; job and gen are guarded by
	// Registry.mu.
	runMu sync.Mutex
	job   Job
	gen   uint64
}

// Registry owns the job set. The table is guarded by one mutex; each
// entry carries its own run mutex so executions never hold the table lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	clock   clock.Clock
	loc     *time.Location
	maxJobs int
	exec    Executor
	timeout time.Duration
	logger  logger.Logger
	store   Store
	saveMu  sync.Mutex
}

// Option configures the Registry.
type Option func(*Registry)

func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithMaxJobs caps the number of jobs; zero means unlimited.
func WithMaxJobs(n int) Option {
	return func(r *Registry) {
		r.maxJobs = n
	}
}

// WithLocation sets the zone used for At and Cron schedules.
func WithLocation(loc *time.Location) Option {
	return func(r *Registry) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithExecutor(e Executor) Option {
	return func(r *Registry) {
		r.exec = e
	}
}

// WithJobTimeout bounds each execution; zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func WithStore(s Store) Option {
	return func(r *Registry) {
		r.store = s
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		clock:   clock.New(),
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.NewNop()
	}
	if r.exec == nil {
		r.exec = LogExecutor{Logger: r.logger}
	}
	r.logger = r.logger.WithField("component", "registry")
	return r
}

func (r *Registry) now() time.Time {
	return r.clock.Now().In(r.loc)
}

// Add validates and stores j, computing its first NextRun from now.
// The registry is unchanged when an error is returned.
func (r *Registry) Add(j Job) (Job, error) {
	name := strings.TrimSpace(j.Name)
	if name == "" {
		return Job{}, &ValidationError{Name: j.Name, Kind: ErrInvalidName}
	}
	if err := j.Schedule.Validate(); err != nil {
		return Job{}, &ValidationError{Name: name, Kind: ErrInvalidSchedule, Cause: err}
	}

	r.mu.Lock()
	if _, exists := r.entries[name]; exists {
		r.mu.Unlock()
		return Job{}, &ValidationError{Name: name, Kind: ErrDuplicateName}
	}
	if r.maxJobs > 0 && len(r.entries) >= r.maxJobs {
		r.mu.Unlock()
		return Job{}, &ValidationError{Name: name, Kind: ErrCapacityExceeded, Cause: fmt.Errorf("limit is %d", r.maxJobs)}
	}

	now := r.now()
	stored := j.Clone()
	stored.Name = name
	stored.CreatedAt = now
	stored.LastRun = nil
	stored.NextRun = stored.Schedule.Next(now)
	stored.LastError = ""
	stored.RunCount = 0
	stored.FailCount = 0

	r.entries[name] = &entry{job: stored}
	r.order = append(r.order, name)
	out := stored.Clone()
	r.mu.Unlock()

	r.logger.WithFields(map[string]any{
		"job":      name,
		"schedule": stored.Schedule.String(),
		"next_run": stored.NextRun.Format(time.RFC3339),
	}).Info("job added")
	r.persist()
	return out, nil
}

// Toggle flips Enabled. Enabling recomputes NextRun from now; disabling
// leaves NextRun frozen.
func (r *Registry) Toggle(name string) (Job, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("toggle %q: %w", name, ErrNotFound)
	}
	e.job.Enabled = !e.job.Enabled
	if e.job.Enabled {
		e.job.NextRun = e.job.Schedule.Next(r.now())
	}
	out := e.job.Clone()
	r.mu.Unlock()

	r.logger.WithFields(map[string]any{"job": name, "enabled": out.Enabled}).Info("job toggled")
	r.persist()
	return out, nil
}

// Remove deletes the job. A run already in flight finishes but is not
// recorded.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("remove %q: %w", name, ErrNotFound)
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.WithField("job", name).Info("job removed")
	r.persist()
	return nil
}

// Get returns a copy of one job.
func (r *Registry) Get(name string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Job{}, fmt.Errorf("get %q: %w", name, ErrNotFound)
	}
	return e.job.Clone(), nil
}

// List returns a deep copy of all jobs in insertion order.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		jobs = append(jobs, r.entries[name].job.Clone())
	}
	return jobs
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stats summarises the registry for an overview screen.
type Stats struct {
	Total    int
	Enabled  int
	NextJob  string
	NextWake time.Time // zero when no job is enabled
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st Stats
	st.Total = len(r.entries)
	for _, name := range r.order {
		j := r.entries[name].job
		if !j.Enabled {
			continue
		}
		st.Enabled++
		if st.NextWake.IsZero() || j.NextRun.Before(st.NextWake) {
			st.NextWake = j.NextRun
			st.NextJob = j.Name
		}
	}
	return st
}

// Restore loads previously persisted jobs, keeping their run history.
// Invalid or duplicate records are skipped and reported in the returned
// error; the valid ones are stored.
func (r *Registry) Restore(jobs []Job) error {
	var errs []error

	r.mu.Lock()
	now := r.now()
	restored := 0
	for _, j := range jobs {
		name := strings.TrimSpace(j.Name)
		switch {
		case name == "":
			errs = append(errs, &ValidationError{Name: j.Name, Kind: ErrInvalidName})
			continue
		case j.Schedule.Validate() != nil:
			errs = append(errs, &ValidationError{Name: name, Kind: ErrInvalidSchedule, Cause: j.Schedule.Validate()})
			continue
		case r.entries[name] != nil:
			errs = append(errs, &ValidationError{Name: name, Kind: ErrDuplicateName})
			continue
		case r.maxJobs > 0 && len(r.entries) >= r.maxJobs:
			errs = append(errs, &ValidationError{Name: name, Kind: ErrCapacityExceeded})
			continue
		}

		stored := j.Clone()
		stored.Name = name
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		if stored.NextRun.IsZero() {
			anchor := now
			if stored.LastRun != nil {
				anchor = *stored.LastRun
			}
			stored.NextRun = stored.Schedule.Next(anchor)
		}
		r.entries[name] = &entry{job: stored}
		r.order = append(r.order, name)
		restored++
	}
	r.mu.Unlock()

	r.logger.Info("restored %d jobs", restored)
	return errors.Join(errs...)
}

// persist writes a consistent snapshot. saveMu makes later mutations win.
func (r *Registry) persist() {
	if r.store == nil {
		return
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.List()); err != nil {
		r.logger.Error("failed to persist jobs: %s", err)
	}
}
