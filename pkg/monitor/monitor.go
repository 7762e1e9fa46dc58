package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const (
	DefaultHealthPath = "/health"
	DefaultTimeout    = 3 * time.Second

	subscriberBuffer = 16
)

// Monitor polls a gateway health endpoint and keeps its liveness in a
// single status cell. Probes never overlap: a manual check waits for a
// tick probe in flight and vice versa.
type Monitor struct {
	prober     Prober
	clock      clock.Clock
	healthPath string
	limiter    *rate.Limiter
	logger     logger.Logger

	// lifeMu guards the polling goroutine; probeMu serializes probes.
	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	probeMu sync.Mutex

	mu      sync.Mutex
	state   State
	settled Status
	timeout time.Duration
	subs    map[int]chan State
	nextSub int
}

type Option func(*Monitor)

func WithProber(p Prober) Option {
	return func(m *Monitor) {
		m.prober = p
	}
}

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

func WithHealthPath(path string) Option {
	return func(m *Monitor) {
		if path != "" {
			m.healthPath = "/" + strings.TrimLeft(path, "/")
		}
	}
}

// WithTimeout sets the probe timeout used by CheckNow before polling starts.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithCheckNowLimit allows burst manual checks and one more every period.
func WithCheckNowLimit(period time.Duration, burst int) Option {
	return func(m *Monitor) {
		if period > 0 && burst > 0 {
			m.limiter = rate.NewLimiter(rate.Every(period), burst)
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		m.logger = l
	}
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		clock:      clock.New(),
		healthPath: DefaultHealthPath,
		timeout:    DefaultTimeout,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		subs:       make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.prober == nil {
		m.prober = NewHTTPProber()
	}
	if m.logger == nil {
		m.logger = logger.NewNop()
	}
	m.logger = m.logger.WithField("component", "monitor")
	m.state.LastTransitionAt = m.clock.Now()
	return m
}

// NormalizeEndpoint maps ws/wss to http/https and drops a trailing slash.
func NormalizeEndpoint(raw string) (string, error) {
	endpoint := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(endpoint, "ws://"):
		endpoint = "http://" + strings.TrimPrefix(endpoint, "ws://")
	case strings.HasPrefix(endpoint, "wss://"):
		endpoint = "https://" + strings.TrimPrefix(endpoint, "wss://")
	}
	endpoint = strings.TrimRight(endpoint, "/")

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, raw)
	}
	return endpoint, nil
}

// SetEndpoint changes the probed endpoint without touching polling.
func (m *Monitor) SetEndpoint(endpoint string) error {
	normalized, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.state.Endpoint = normalized
	m.mu.Unlock()
	return nil
}

// StartPolling probes endpoint every interval, each probe bounded by
// timeout. Calling it while polling restarts with the new settings.
func (m *Monitor) StartPolling(endpoint string, interval, timeout time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if timeout <= 0 || timeout >= interval {
		return ErrInvalidTimeout
	}
	normalized, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return err
	}

	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	m.stopLocked()

	m.mu.Lock()
	m.state.Endpoint = normalized
	m.state.Polling = true
	m.timeout = timeout
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	ticker := m.clock.Ticker(interval)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.poll(ctx, ticker, m.done)

	m.logger.WithFields(map[string]any{
		"endpoint": normalized,
		"interval": interval.String(),
		"timeout":  timeout.String(),
	}).Info("polling started")
	return nil
}

// StopPolling halts polling and leaves the status as it is.
func (m *Monitor) StopPolling() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.stopLocked() {
		m.logger.Info("polling stopped")
	}
}

// Disable stops polling and forces Disconnected. A manual check in flight
// finishes first so its verdict cannot outlive the disable.
func (m *Monitor) Disable() {
	m.StopPolling()

	m.probeMu.Lock()
	defer m.probeMu.Unlock()

	m.mu.Lock()
	m.setStatusLocked(Disconnected)
	m.mu.Unlock()
}

func (m *Monitor) stopLocked() bool {
	if m.cancel == nil {
		return false
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil

	m.mu.Lock()
	m.state.Polling = false
	m.mu.Unlock()
	return true
}

func (m *Monitor) poll(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// CheckNow runs one probe immediately. The probe outcome is reported in
// the returned State; the error covers only why no probe was made.
func (m *Monitor) CheckNow(ctx context.Context) (State, error) {
	if m.State().Endpoint == "" {
		return m.State(), ErrNoEndpoint
	}
	if !m.limiter.AllowN(m.clock.Now(), 1) {
		return m.State(), ErrRateLimited
	}
	return m.probe(ctx), nil
}

// State returns a snapshot without blocking on probes.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel receiving the state after every status
// transition. Updates are dropped for a subscriber whose buffer is full.
// The returned func unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Monitor) probe(ctx context.Context) State {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()

	m.mu.Lock()
	endpoint := m.state.Endpoint
	timeout := m.timeout
	prev := m.state.Status
	m.setStatusLocked(Checking)
	m.mu.Unlock()

	target := endpoint + m.healthPath
	pctx, cancel := context.WithTimeout(ctx, timeout)
	code, ms, err := m.prober.Probe(pctx, target)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	// abandoned by StopPolling or the caller: no verdict
	if ctx.Err() != nil {
		m.setStatusLocked(prev)
		return m.state
	}

	m.state.LastCheckAt = m.clock.Now()
	m.state.LastHTTPStatus = code
	m.state.LastLatency = time.Duration(ms) * time.Millisecond

	if perr := classify(target, code, err); perr != nil {
		m.state.LastError = perr.Error()
		m.setStatusLocked(Disconnected)
		m.logger.WithFields(map[string]any{
			"url":  target,
			"kind": string(perr.Kind),
		}).Debug("probe failed: %s", perr)
		return m.state
	}

	m.state.LastError = ""
	m.setStatusLocked(Connected)
	return m.state
}

func classify(target string, code int, err error) *ProbeError {
	if err != nil {
		kind := ProbeConnection
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			kind = ProbeTimeout
		}
		return &ProbeError{Kind: kind, URL: target, Err: err}
	}
	if code < 200 || code > 299 {
		return &ProbeError{Kind: ProbeStatus, URL: target, StatusCode: code}
	}
	return nil
}

// setStatusLocked must be called with m.mu held.
func (m *Monitor) setStatusLocked(s Status) {
	if m.state.Status == s {
		return
	}
	m.state.Status = s
	m.state.LastTransitionAt = m.clock.Now()

	if s != Checking && s != m.settled {
		m.logger.WithFields(map[string]any{
			"from": m.settled.String(),
			"to":   s.String(),
		}).Info("gateway status changed")
		m.settled = s
	}
	for _, ch := range m.subs {
		select {
		case ch <- m.state:
		default:
		}
	}
}
