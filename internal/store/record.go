package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
)

// Record is the persisted form of a job. Times are RFC 3339 with
// nanoseconds; the schedule is in the form Parse accepts.
type Record struct {
	Name      string `yaml:"name"`
	Schedule  string `yaml:"schedule"`
	Enabled   bool   `yaml:"enabled"`
	Payload   string `yaml:"payload,omitempty"`
	CreatedAt string `yaml:"created_at"`
	LastRun   string `yaml:"last_run,omitempty"`
	NextRun   string `yaml:"next_run"`
	LastError string `yaml:"last_error,omitempty"`
	RunCount  uint64 `yaml:"run_count"`
	FailCount uint64 `yaml:"fail_count"`
}

func ToRecord(j job.Job) Record {
	r := Record{
		Name:      j.Name,
		Schedule:  j.Schedule.String(),
		Enabled:   j.Enabled,
		Payload:   string(j.Payload),
		CreatedAt: formatTime(j.CreatedAt),
		NextRun:   formatTime(j.NextRun),
		LastError: j.LastError,
		RunCount:  j.RunCount,
		FailCount: j.FailCount,
	}
	if j.LastRun != nil {
		r.LastRun = formatTime(*j.LastRun)
	}
	return r
}

func FromRecord(r Record) (job.Job, error) {
	spec, err := schedule.Parse(r.Schedule)
	if err != nil {
		return job.Job{}, fmt.Errorf("job %q: %w", r.Name, err)
	}

	j := job.Job{
		Name:      r.Name,
		Schedule:  spec,
		Enabled:   r.Enabled,
		LastError: r.LastError,
		RunCount:  r.RunCount,
		FailCount: r.FailCount,
	}
	if r.Payload != "" {
		j.Payload = []byte(r.Payload)
	}

	var errs []error
	if j.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		errs = append(errs, fmt.Errorf("created_at: %w", err))
	}
	if j.NextRun, err = parseTime(r.NextRun); err != nil {
		errs = append(errs, fmt.Errorf("next_run: %w", err))
	}
	if r.LastRun != "" {
		lastRun, err := parseTime(r.LastRun)
		if err != nil {
			errs = append(errs, fmt.Errorf("last_run: %w", err))
		} else {
			j.LastRun = &lastRun
		}
	}
	if len(errs) > 0 {
		return job.Job{}, fmt.Errorf("job %q: %w", r.Name, errors.Join(errs...))
	}
	return j, nil
}

// fromRecords converts what it can and reports the rest.
func fromRecords(records []Record) ([]job.Job, error) {
	jobs := make([]job.Job, 0, len(records))
	var errs []error
	for _, r := range records {
		j, err := FromRecord(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, errors.Join(errs...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
