package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
)

var t0 = time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)

type countingExecutor struct {
	calls atomic.Int64
	err   error
}

func (c *countingExecutor) Execute(ctx context.Context, j Job) error {
	c.calls.Add(1)
	return c.err
}

type memStore struct {
	mu    sync.Mutex
	saves int
	last  []Job
}

func (m *memStore) Save(ctx context.Context, jobs []Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.last = jobs
	return nil
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *clock.Mock, *countingExecutor) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(t0)
	exec := &countingExecutor{}
	base := []Option{WithClock(mock), WithExecutor(exec)}
	return NewRegistry(append(base, opts...)...), mock, exec
}

func assertTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestRegistry_AddComputesNextRun(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	j, err := r.Add(New("daily", schedule.MustParse("every 24h"), []byte(`{"type":"summary"}`)))
	require.NoError(t, err)

	assert.Equal(t, "daily", j.Name)
	assert.True(t, j.Enabled)
	assert.Nil(t, j.LastRun)
	assertTime(t, t0, j.CreatedAt)
	assertTime(t, time.Date(2025, 7, 22, 8, 0, 0, 0, time.UTC), j.NextRun)
}

func TestRegistry_AddDuplicateLeavesRegistryUnchanged(t *testing.T) {
	r, mock, _ := newTestRegistry(t)

	_, err := r.Add(New("daily", schedule.MustParse("every 24h"), nil))
	require.NoError(t, err)
	before := r.List()

	mock.Add(time.Hour)
	_, err = r.Add(New("daily", schedule.MustParse("every 1h"), []byte("other")))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, before, r.List())
}

func TestRegistry_AddValidation(t *testing.T) {
	r, _, _ := newTestRegistry(t, WithMaxJobs(1))

	_, err := r.Add(New("  ", schedule.MustParse("every 1h"), nil))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = r.Add(Job{Name: "no-schedule", Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = r.Add(New("first", schedule.MustParse("every 1h"), nil))
	require.NoError(t, err)

	_, err = r.Add(New("second", schedule.MustParse("every 1h"), nil))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AddTrimsName(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	j, err := r.Add(New(" report ", schedule.MustParse("every 1h"), nil))
	require.NoError(t, err)
	assert.Equal(t, "report", j.Name)

	_, err = r.Get("report")
	assert.NoError(t, err)
}

func TestRegistry_ToggleFreezesAndRecomputes(t *testing.T) {
	r, mock, _ := newTestRegistry(t)

	added, err := r.Add(New("hourly", schedule.MustParse("every 1h"), nil))
	require.NoError(t, err)

	disabled, err := r.Toggle("hourly")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	assertTime(t, added.NextRun, disabled.NextRun)

	mock.Add(3 * time.Hour)
	assert.Empty(t, r.Due(mock.Now()))
	frozen, err := r.Get("hourly")
	require.NoError(t, err)
	assertTime(t, added.NextRun, frozen.NextRun)

	enabled, err := r.Toggle("hourly")
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
	assertTime(t, t0.Add(4*time.Hour), enabled.NextRun)
}

func TestRegistry_NotFound(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	_, err := r.Toggle("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.Remove("missing"), ErrNotFound)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_RemoveAndListOrder(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	for _, name := range []string{"c", "a", "b"} {
		_, err := r.Add(New(name, schedule.MustParse("every 1h"), nil))
		require.NoError(t, err)
	}
	require.NoError(t, r.Remove("a"))

	var names []string
	for _, j := range r.List() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"c", "b"}, names)
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	_, err := r.Add(New("payload", schedule.MustParse("every 1h"), []byte("abc")))
	require.NoError(t, err)

	jobs := r.List()
	jobs[0].Payload[0] = 'X'
	jobs[0].Enabled = false

	got, err := r.Get("payload")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Payload)
	assert.True(t, got.Enabled)
}

func TestRegistry_Stats(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	_, err := r.Add(New("daily", schedule.MustParse("every 24h"), nil))
	require.NoError(t, err)
	_, err = r.Add(New("hourly", schedule.MustParse("every 1h"), nil))
	require.NoError(t, err)
	_, err = r.Add(New("off", schedule.MustParse("every 1m"), nil))
	require.NoError(t, err)
	_, err = r.Toggle("off")
	require.NoError(t, err)

	st := r.Stats()
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Enabled)
	assert.Equal(t, "hourly", st.NextJob)
	assertTime(t, t0.Add(time.Hour), st.NextWake)
}

func TestRegistry_Restore(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	last := t0.Add(-time.Hour)
	err := r.Restore([]Job{
		{Name: "kept", Schedule: schedule.MustParse("every 24h"), Enabled: true, LastRun: &last, NextRun: last.Add(24 * time.Hour), RunCount: 4},
		{Name: "fresh", Schedule: schedule.MustParse("every 2h"), Enabled: true, LastRun: &last},
		{Name: "broken", Enabled: true},
		{Name: "kept", Schedule: schedule.MustParse("every 1h")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	assert.ErrorIs(t, err, ErrDuplicateName)

	jobs := r.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, uint64(4), jobs[0].RunCount)
	assertTime(t, last.Add(24*time.Hour), jobs[0].NextRun)
	assertTime(t, last.Add(2*time.Hour), jobs[1].NextRun)
	assertTime(t, t0, jobs[1].CreatedAt)
}

func TestRegistry_PersistsMutations(t *testing.T) {
	store := &memStore{}
	r, _, _ := newTestRegistry(t, WithStore(store))

	_, err := r.Add(New("daily", schedule.MustParse("every 24h"), nil))
	require.NoError(t, err)
	_, err = r.Toggle("daily")
	require.NoError(t, err)
	_, err = r.RunNow(context.Background(), "daily")
	require.NoError(t, err)
	require.NoError(t, r.Remove("daily"))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 4, store.saves)
	assert.Empty(t, store.last)
}
