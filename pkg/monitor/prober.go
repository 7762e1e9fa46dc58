package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds a probe when the caller's context carries no
// deadline of its own.
const DefaultProbeTimeout = 5 * time.Second

// Prober performs one health request. A non-2xx status is not an error at
// this level; the monitor classifies it.
type Prober interface {
	Probe(ctx context.Context, url string) (status int, latencyMs int64, err error)
}

// HTTPProber issues plain GET requests without following redirects.
type HTTPProber struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

type ProberOption func(*HTTPProber)

func WithProbeTimeout(timeout time.Duration) ProberOption {
	return func(p *HTTPProber) {
		p.timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) ProberOption {
	return func(p *HTTPProber) {
		p.client = client
	}
}

func WithUserAgent(ua string) ProberOption {
	return func(p *HTTPProber) {
		p.userAgent = ua
	}
}

func NewHTTPProber(opts ...ProberOption) *HTTPProber {
	p := &HTTPProber{
		timeout:   DefaultProbeTimeout,
		userAgent: "cronwatch-healthcheck/1.0",
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = &http.Client{
			Timeout: p.timeout,
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
			// the health endpoint must answer itself
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return p
}

// Probe sends a GET and returns the status code and response time.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, int64, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return 0, elapsed, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, elapsed, nil
}
