package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, status int) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &path
}

func newTestMonitor(t *testing.T, opts ...Option) (*Monitor, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	m := New(append([]Option{WithClock(mock)}, opts...)...)
	t.Cleanup(m.StopPolling)
	return m, mock
}

func TestMonitor_InitialState(t *testing.T) {
	m, _ := newTestMonitor(t)

	st := m.State()
	assert.Equal(t, Disconnected, st.Status)
	assert.False(t, st.Polling)
	assert.Empty(t, st.Endpoint)
}

func TestMonitor_PollingConnectsOn200(t *testing.T) {
	srv, path := healthServer(t, http.StatusOK)
	m, mock := newTestMonitor(t)

	require.NoError(t, m.StartPolling(srv.URL+"/", 5*time.Second, 3*time.Second))
	assert.True(t, m.State().Polling)
	assert.Equal(t, srv.URL, m.State().Endpoint)

	mock.Add(5 * time.Second)

	assert.Eventually(t, func() bool {
		return m.State().Status == Connected
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "/health", path.Load())
	assert.Equal(t, http.StatusOK, m.State().LastHTTPStatus)
	assert.Empty(t, m.State().LastError)
}

func TestMonitor_SlowEndpointDisconnects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, mock := newTestMonitor(t)
	updates, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.StartPolling(srv.URL, 5*time.Second, 50*time.Millisecond))
	mock.Add(5 * time.Second)

	var seen []Status
	require.Eventually(t, func() bool {
		select {
		case st := <-updates:
			seen = append(seen, st.Status)
		default:
		}
		return len(seen) == 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []Status{Checking, Disconnected}, seen)
	assert.Contains(t, m.State().LastError, string(ProbeTimeout))
}

func TestMonitor_CheckNow(t *testing.T) {
	ok, _ := healthServer(t, http.StatusNoContent)
	failing, _ := healthServer(t, http.StatusInternalServerError)
	gone := httptest.NewServer(http.NotFoundHandler())
	goneURL := gone.URL
	gone.Close()

	tests := []struct {
		name     string
		endpoint string
		want     Status
		errPart  string
	}{
		{name: "2xx", endpoint: ok.URL, want: Connected},
		{name: "5xx", endpoint: failing.URL, want: Disconnected, errPart: "unhealthy status 500"},
		{name: "refused", endpoint: goneURL, want: Disconnected, errPart: string(ProbeConnection)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMonitor(t)
			require.NoError(t, m.SetEndpoint(tt.endpoint))

			st, err := m.CheckNow(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Status)
			assert.False(t, st.Polling)
			if tt.errPart != "" {
				assert.Contains(t, st.LastError, tt.errPart)
			}
		})
	}
}

func TestMonitor_CheckNowWithoutEndpoint(t *testing.T) {
	m, _ := newTestMonitor(t)

	_, err := m.CheckNow(context.Background())
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestMonitor_CheckNowRateLimited(t *testing.T) {
	srv, _ := healthServer(t, http.StatusOK)
	m, mock := newTestMonitor(t, WithCheckNowLimit(time.Minute, 2))
	require.NoError(t, m.SetEndpoint(srv.URL))

	for i := 0; i < 2; i++ {
		_, err := m.CheckNow(context.Background())
		require.NoError(t, err)
	}
	_, err := m.CheckNow(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)

	mock.Add(time.Minute)
	_, err = m.CheckNow(context.Background())
	assert.NoError(t, err)
}

func TestMonitor_StopPollingKeepsStatus(t *testing.T) {
	srv, _ := healthServer(t, http.StatusOK)
	m, _ := newTestMonitor(t)

	require.NoError(t, m.StartPolling(srv.URL, 5*time.Second, time.Second))
	_, err := m.CheckNow(context.Background())
	require.NoError(t, err)

	m.StopPolling()
	m.StopPolling()

	st := m.State()
	assert.Equal(t, Connected, st.Status)
	assert.False(t, st.Polling)
}

func TestMonitor_DisableForcesDisconnected(t *testing.T) {
	srv, _ := healthServer(t, http.StatusOK)
	m, _ := newTestMonitor(t)

	require.NoError(t, m.StartPolling(srv.URL, 5*time.Second, time.Second))
	_, err := m.CheckNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Connected, m.State().Status)

	m.Disable()

	st := m.State()
	assert.Equal(t, Disconnected, st.Status)
	assert.False(t, st.Polling)
}

func TestMonitor_DisableWinsOverCheckInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	m, _ := newTestMonitor(t,
		WithProber(proberFunc(func(ctx context.Context, url string) (int, int64, error) {
			close(entered)
			<-release
			return http.StatusOK, 1, nil
		})),
	)
	require.NoError(t, m.SetEndpoint("http://gateway.local"))

	checked := make(chan State, 1)
	go func() {
		st, _ := m.CheckNow(context.Background())
		checked <- st
	}()
	<-entered

	disabled := make(chan struct{})
	go func() {
		m.Disable()
		close(disabled)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Equal(t, Connected, (<-checked).Status)
	<-disabled
	assert.Equal(t, Disconnected, m.State().Status)
}

func TestMonitor_StartPollingRestarts(t *testing.T) {
	first, _ := healthServer(t, http.StatusOK)
	second, secondPath := healthServer(t, http.StatusOK)
	m, mock := newTestMonitor(t)

	require.NoError(t, m.StartPolling(first.URL, 5*time.Second, time.Second))
	require.NoError(t, m.StartPolling(second.URL, 10*time.Second, time.Second))
	assert.Equal(t, second.URL, m.State().Endpoint)
	assert.True(t, m.State().Polling)

	mock.Add(10 * time.Second)
	assert.Eventually(t, func() bool {
		return secondPath.Load() != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMonitor_StartPollingValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		interval time.Duration
		timeout  time.Duration
		want     error
	}{
		{name: "zero interval", endpoint: "http://gw", interval: 0, timeout: time.Second, want: ErrInvalidInterval},
		{name: "zero timeout", endpoint: "http://gw", interval: time.Second, timeout: 0, want: ErrInvalidTimeout},
		{name: "timeout equals interval", endpoint: "http://gw", interval: time.Second, timeout: time.Second, want: ErrInvalidTimeout},
		{name: "unsupported scheme", endpoint: "ftp://gw", interval: 5 * time.Second, timeout: time.Second, want: ErrInvalidEndpoint},
		{name: "empty endpoint", endpoint: "", interval: 5 * time.Second, timeout: time.Second, want: ErrInvalidEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMonitor(t)
			err := m.StartPolling(tt.endpoint, tt.interval, tt.timeout)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, m.State().Polling)
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ws://127.0.0.1:18789", want: "http://127.0.0.1:18789"},
		{in: "wss://gw.example.com/", want: "https://gw.example.com"},
		{in: " http://localhost:8080 ", want: "http://localhost:8080"},
		{in: "https://gw.example.com/api", want: "https://gw.example.com/api"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonitor_SubscribeCancelCloses(t *testing.T) {
	m, _ := newTestMonitor(t)
	updates, cancel := m.Subscribe()

	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)
}

type proberFunc func(ctx context.Context, url string) (int, int64, error)

func (f proberFunc) Probe(ctx context.Context, url string) (int, int64, error) {
	return f(ctx, url)
}

func TestMonitor_CustomHealthPathAndTimeoutKind(t *testing.T) {
	var gotURL string
	m, _ := newTestMonitor(t,
		WithHealthPath("status"),
		WithProber(proberFunc(func(ctx context.Context, url string) (int, int64, error) {
			gotURL = url
			return 0, 3000, context.DeadlineExceeded
		})),
	)
	require.NoError(t, m.SetEndpoint("ws://gw.local:18789"))

	st, err := m.CheckNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://gw.local:18789/status", gotURL)
	assert.Equal(t, Disconnected, st.Status)
	assert.Equal(t, 3*time.Second, st.LastLatency)

	perr := classify(gotURL, 0, context.DeadlineExceeded)
	assert.Equal(t, ProbeTimeout, perr.Kind)
	assert.True(t, errors.Is(perr, context.DeadlineExceeded))
}
