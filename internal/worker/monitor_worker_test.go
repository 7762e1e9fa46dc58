package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/monitor"
)

func TestMonitorWorker_StartChecksOnStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mon := monitor.New(monitor.WithClock(clock.NewMock()))
	mw := NewMonitorWorker(types.MonitorConfig{
		Enabled:      true,
		Endpoint:     srv.URL,
		PollInterval: 5 * time.Second,
		Timeout:      time.Second,
		CheckOnStart: true,
	}, mon, nil)

	require.NoError(t, mw.Start(context.Background()))
	st := mon.State()
	assert.Equal(t, monitor.Connected, st.Status)
	assert.True(t, st.Polling)

	require.NoError(t, mw.Stop())
	require.NoError(t, mw.Stop())
	st = mon.State()
	assert.Equal(t, monitor.Connected, st.Status)
	assert.False(t, st.Polling)
}

func TestMonitorWorker_Disabled(t *testing.T) {
	mon := monitor.New(monitor.WithClock(clock.NewMock()))
	mw := NewMonitorWorker(types.MonitorConfig{Enabled: false, Endpoint: "http://gw"}, mon, nil)

	require.NoError(t, mw.Start(context.Background()))
	assert.False(t, mon.State().Polling)
	require.NoError(t, mw.Stop())
}

func TestMonitorWorker_InvalidSettings(t *testing.T) {
	mon := monitor.New(monitor.WithClock(clock.NewMock()))
	mw := NewMonitorWorker(types.MonitorConfig{
		Enabled:      true,
		Endpoint:     "http://gw",
		PollInterval: time.Second,
		Timeout:      2 * time.Second,
	}, mon, nil)

	assert.ErrorIs(t, mw.Start(context.Background()), monitor.ErrInvalidTimeout)
}
