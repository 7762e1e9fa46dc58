package monitor

import (
	"errors"
	"fmt"
)

var (
	ErrNoEndpoint      = errors.New("no endpoint configured")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidInterval = errors.New("poll interval must be positive")
	ErrInvalidTimeout  = errors.New("timeout must be positive and shorter than the poll interval")
	ErrRateLimited     = errors.New("manual checks rate limited")
)

type ProbeErrorKind string

const (
	ProbeTimeout    ProbeErrorKind = "timeout"
	ProbeConnection ProbeErrorKind = "connection"
	ProbeStatus     ProbeErrorKind = "status"
)

// ProbeError describes why a probe did not count as healthy.
type ProbeError struct {
	Kind       ProbeErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *ProbeError) Error() string {
	if e.Kind == ProbeStatus {
		return fmt.Sprintf("probe %s: unhealthy status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("probe %s: %s: %s", e.URL, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
