package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProber_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	code, _, err := NewHTTPProber().Probe(context.Background(), srv.URL+"/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, code)
}

func TestHTTPProber_SendsUserAgent(t *testing.T) {
	ua := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua <- r.UserAgent()
	}))
	defer srv.Close()

	code, _, err := NewHTTPProber(WithUserAgent("probe-test")).Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "probe-test", <-ua)
}

func TestHTTPProber_BadURL(t *testing.T) {
	_, _, err := NewHTTPProber().Probe(context.Background(), "://nope")
	assert.Error(t, err)
}
