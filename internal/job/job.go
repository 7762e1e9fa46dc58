// internal/job/job.go
package job

import (
	"time"

	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
)

// Job is a recurring unit of work. Payload is opaque to the scheduler and
// is handed to the Executor unchanged.
type Job struct {
	Name      string
	Schedule  schedule.Spec
	Enabled   bool
	Payload   []byte
	CreatedAt time.Time
	LastRun   *time.Time
	NextRun   time.Time

	LastError string
	RunCount  uint64
	FailCount uint64
}

// New returns an enabled job ready for Registry.Add.
func New(name string, spec schedule.Spec, payload []byte) Job {
	return Job{
		Name:     name,
		Schedule: spec,
		Enabled:  true,
		Payload:  payload,
	}
}

// Clone returns a deep copy so callers never share the registry's memory.
func (j Job) Clone() Job {
	out := j
	if j.Payload != nil {
		out.Payload = append([]byte(nil), j.Payload...)
	}
	if j.LastRun != nil {
		lr := *j.LastRun
		out.LastRun = &lr
	}
	return out
}

// Due reports whether the job should fire at t.
func (j Job) Due(t time.Time) bool {
	return j.Enabled && !j.NextRun.After(t)
}
