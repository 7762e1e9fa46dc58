package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

// Validate reports every problem in cfg at once.
func Validate(cfg *types.Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		add("timezone: %w", err)
	}

	s := cfg.Scheduler
	if s.TickInterval <= 0 {
		add("scheduler.tick_interval must be positive, got %s", s.TickInterval)
	}
	if s.MaxJobs < 0 {
		add("scheduler.max_jobs must not be negative, got %d", s.MaxJobs)
	}
	if s.JobTimeout < 0 {
		add("scheduler.job_timeout must not be negative, got %s", s.JobTimeout)
	}

	m := cfg.Monitor
	if m.Enabled {
		if strings.TrimSpace(m.Endpoint) == "" {
			add("monitor.endpoint is required when the monitor is enabled")
		}
		if m.PollInterval <= 0 {
			add("monitor.poll_interval must be positive, got %s", m.PollInterval)
		}
		if m.Timeout <= 0 || m.Timeout >= m.PollInterval {
			add("monitor.timeout must be positive and below monitor.poll_interval, got %s", m.Timeout)
		}
	}

	switch strings.ToLower(cfg.Executor.Kind) {
	case "", "log":
	case "docker":
		if cfg.Docker.Container == "" {
			add("docker.container is required for the docker executor")
		}
	default:
		add("executor.kind %q is not one of log, docker", cfg.Executor.Kind)
	}

	switch strings.ToLower(cfg.Store.Driver) {
	case "", "none":
	case "file", "sqlite":
		if strings.TrimSpace(cfg.Store.Path) == "" {
			add("store.path is required for the %s driver", cfg.Store.Driver)
		}
	default:
		add("store.driver %q is not one of none, file, sqlite", cfg.Store.Driver)
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for i, j := range cfg.Jobs {
		name := strings.TrimSpace(j.Name)
		if name == "" {
			add("jobs[%d]: name is required", i)
			continue
		}
		if seen[name] {
			add("jobs[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		if _, err := schedule.Parse(j.Schedule); err != nil {
			add("jobs[%d] %q: %w", i, name, err)
		}
	}

	return errors.Join(errs...)
}

// Location returns the configured scheduling time zone, UTC when unset.
func Location(cfg *types.Config) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(cfg.Timezone)
}
