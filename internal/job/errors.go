package job

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName      = errors.New("job name required")
	ErrDuplicateName    = errors.New("job name already exists")
	ErrCapacityExceeded = errors.New("job capacity exceeded")
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrNotFound         = errors.New("job not found")
)

// ValidationError is returned synchronously by Add and Restore. It wraps
// one of the sentinel errors above and, for schedules, the
// schedule.ScheduleError cause.
type ValidationError struct {
	Name  string
	Kind  error
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job %q: %s: %s", e.Name, e.Kind, e.Cause)
	}
	return fmt.Sprintf("job %q: %s", e.Name, e.Kind)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// ExecutionError records a failed side effect for one run of one job.
type ExecutionError struct {
	Job   string
	RunID string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job %q run %s failed: %s", e.Job, e.RunID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
