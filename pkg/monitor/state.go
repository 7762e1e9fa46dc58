package monitor

import "time"

// Status is the liveness of the gateway as last observed.
type Status int

const (
	Disconnected Status = iota
	Checking
	Connected
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// State is a point-in-time snapshot of the monitor.
type State struct {
	Status           Status
	Endpoint         string
	Polling          bool
	LastTransitionAt time.Time
	LastCheckAt      time.Time
	LastError        string
	LastHTTPStatus   int
	LastLatency      time.Duration
}
