package app

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amir-mohammad-HP/cronwatch/internal/config"
	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
	"github.com/amir-mohammad-HP/cronwatch/pkg/monitor"
)

var t0 = time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *types.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Monitor.Enabled = false
	cfg.Shutdown.Timeout = 5 * time.Second
	disabled := false
	cfg.Jobs = []types.JobConfig{
		{Name: "daily-summary", Schedule: "every 24h", Payload: `{"type":"summary"}`},
		{Name: "health-check", Schedule: "cron 0 */6 * * *", Enabled: &disabled},
	}
	return &cfg
}

type countingExecutor struct {
	calls atomic.Int32
}

func (c *countingExecutor) Execute(ctx context.Context, j job.Job) error {
	c.calls.Add(1)
	return nil
}

func newMock() *clock.Mock {
	mock := clock.NewMock()
	mock.Set(t0)
	return mock
}

func TestNew_SeedsConfigJobs(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.NewNop(), WithClock(newMock()))
	require.NoError(t, err)

	jobs := a.Registry().List()
	require.Len(t, jobs, 2)
	assert.Equal(t, "daily-summary", jobs[0].Name)
	assert.True(t, jobs[0].Enabled)
	assert.Equal(t, []byte(`{"type":"summary"}`), jobs[0].Payload)
	assert.True(t, t0.Add(24*time.Hour).Equal(jobs[0].NextRun))
	assert.False(t, jobs[1].Enabled)
}

func TestNew_RestoredJobsWinOverSeeds(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = types.StoreConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "jobs.yaml")}
	mock := newMock()
	exec := &countingExecutor{}

	first, err := New(context.Background(), cfg, logger.NewNop(), WithClock(mock), WithExecutor(exec))
	require.NoError(t, err)
	_, err = first.Registry().RunNow(context.Background(), "daily-summary")
	require.NoError(t, err)
	_, err = first.Registry().Toggle("health-check")
	require.NoError(t, err)
	require.NoError(t, first.store.Close())

	mock.Add(time.Hour)
	second, err := New(context.Background(), cfg, logger.NewNop(), WithClock(mock), WithExecutor(exec))
	require.NoError(t, err)

	daily, err := second.Registry().Get("daily-summary")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), daily.RunCount)
	require.NotNil(t, daily.LastRun)
	assert.True(t, t0.Equal(*daily.LastRun))

	health, err := second.Registry().Get("health-check")
	require.NoError(t, err)
	assert.True(t, health.Enabled, "stored state is kept over the config seed")
	assert.Equal(t, 2, second.Registry().Len())
}

func TestNew_InvalidTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Nowhere/Special"

	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestRun_TicksAndStopsOnCancel(t *testing.T) {
	mock := newMock()
	exec := &countingExecutor{}
	cfg := testConfig(t)
	cfg.Jobs = []types.JobConfig{{Name: "minutely", Schedule: "every 1m"}}
	cfg.Scheduler.TickInterval = time.Minute

	a, err := New(context.Background(), cfg, logger.NewNop(), WithClock(mock), WithExecutor(exec))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- a.Run(ctx)
	}()

	require.Eventually(t, a.Worker().Running, time.Second, 5*time.Millisecond)
	mock.Add(time.Minute)
	require.Eventually(t, func() bool {
		return exec.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, a.Worker().Running())
}

type staticProber struct {
	status int
}

func (p staticProber) Probe(ctx context.Context, url string) (int, int64, error) {
	return p.status, 1, nil
}

func TestRun_MonitorAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.Enabled = true
	cfg.Monitor.CheckOnStart = true

	a, err := New(context.Background(), cfg, logger.NewNop(),
		WithClock(newMock()),
		WithProber(staticProber{status: 200}),
	)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		errc <- a.Run(context.Background())
	}()

	require.Eventually(t, func() bool {
		return a.Monitor().State().Status == monitor.Connected
	}, time.Second, 5*time.Millisecond)

	a.Shutdown()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, a.Monitor().State().Polling)
	assert.Equal(t, monitor.Connected, a.Monitor().State().Status)
}
