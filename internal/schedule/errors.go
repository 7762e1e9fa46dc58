package schedule

import "fmt"

// ScheduleError reports schedule parameters that were rejected at
// construction time.
type ScheduleError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ScheduleError) Error() string {
	msg := fmt.Sprintf("invalid schedule %q: %s", e.Input, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScheduleError) Unwrap() error {
	return e.Err
}

func invalid(input, reason string, err error) *ScheduleError {
	return &ScheduleError{Input: input, Reason: reason, Err: err}
}
