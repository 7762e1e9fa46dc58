package job

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const (
	triggerManual   = "manual"
	triggerSchedule = "schedule"
)

// Due returns the enabled jobs whose NextRun is at or before at, in
// increasing NextRun order with ties broken by name.
func (r *Registry) Due(at time.Time) []Job {
	r.mu.RLock()
	var due []Job
	for _, name := range r.order {
		if j := r.entries[name].job; j.Due(at) {
			due = append(due, j.Clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(due, func(i, k int) bool {
		if !due[i].NextRun.Equal(due[k].NextRun) {
			return due[i].NextRun.Before(due[k].NextRun)
		}
		return due[i].Name < due[k].Name
	})
	return due
}

// RunNow executes the job immediately regardless of NextRun and records
// LastRun = now, NextRun = Next(now). If another run of the same job
// completes while this call waits for it, the call is a no-op and returns
// the updated job. An execution failure is recorded and returned as
// *ExecutionError.
func (r *Registry) RunNow(ctx context.Context, name string) (Job, error) {
	e, gen, err := r.lookup(name)
	if err != nil {
		return Job{}, fmt.Errorf("run %q: %w", name, err)
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	snap, live, moved := r.inspect(e, gen)
	if !live {
		return Job{}, fmt.Errorf("run %q: %w", name, ErrNotFound)
	}
	if moved {
		r.logger.WithField("job", name).Debug("run now skipped, job already ran")
		return snap, nil
	}

	at := r.now()
	execErr := r.execute(ctx, snap, triggerManual)
	return r.record(e, at, execErr), execErr
}

// RunDue runs a job selected by Due for the tick at. It reports false
// without executing when the job was removed, disabled, or already run
// for this window since selection. at is moved into the registry location
// before the next window is computed.
func (r *Registry) RunDue(ctx context.Context, name string, at time.Time) (Job, bool, error) {
	at = at.In(r.loc)
	e, gen, err := r.lookup(name)
	if err != nil {
		return Job{}, false, nil
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	snap, live, moved := r.inspect(e, gen)
	if !live || moved || !snap.Due(at) {
		return snap, false, nil
	}

	execErr := r.execute(ctx, snap, triggerSchedule)
	return r.record(e, at, execErr), true, execErr
}

func (r *Registry) lookup(name string) (*entry, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return e, e.gen, nil
}

// inspect must be called with e.runMu held.
func (r *Registry) inspect(e *entry, gen uint64) (snap Job, live bool, moved bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live = r.entries[e.job.Name] == e
	return e.job.Clone(), live, e.gen != gen
}

// execute calls the executor outside every registry lock. Errors and
// panics come back as *ExecutionError.
func (r *Registry) execute(ctx context.Context, j Job, trigger string) error {
	runID := uuid.NewString()
	log := r.logger.WithFields(map[string]any{
		"job":     j.Name,
		"run_id":  runID,
		"trigger": trigger,
	})

	ctx = logger.WithLogger(ctx, log)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := r.clock.Now()
	err := r.safeExecute(ctx, j)
	took := r.clock.Since(start)
	if err != nil {
		log.Warn("job failed after %s: %s", took, err)
		return &ExecutionError{Job: j.Name, RunID: runID, Err: err}
	}

	log.Debug("job finished in %s", took)
	return nil
}

func (r *Registry) safeExecute(ctx context.Context, j Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.exec.Execute(ctx, j)
}

// record stores the outcome of a run anchored at at, success or not, so a
// failing job still moves to its next window. LastRun is kept strictly
// increasing.
func (r *Registry) record(e *entry, at time.Time, execErr error) Job {
	r.mu.Lock()
	j := &e.job
	if j.LastRun != nil && !at.After(*j.LastRun) {
		at = j.LastRun.Add(time.Nanosecond)
	}
	lastRun := at
	j.LastRun = &lastRun
	j.NextRun = j.Schedule.Next(at)
	j.RunCount++
	if execErr != nil {
		j.FailCount++
		j.LastError = execErr.Error()
	} else {
		j.LastError = ""
	}
	e.gen++
	out := j.Clone()
	live := r.entries[j.Name] == e
	r.mu.Unlock()

	if live {
		r.persist()
	}
	return out
}
