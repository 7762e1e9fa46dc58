package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const DefaultTimeout = 30 * time.Second

type Task func() error

type namedTask struct {
	name string
	task Task
}

// Manager runs cleanup tasks in registration order once shutdown is
// initiated. The whole sequence is bounded by the timeout.
type Manager struct {
	logger   logger.Logger
	mu       sync.Mutex
	tasks    []namedTask
	shutdown chan struct{}
	once     sync.Once
	timeout  time.Duration
}

func NewManager(log logger.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		logger:   log.WithField("component", "shutdown"),
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

func (m *Manager) RegisterTask(name string, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, namedTask{name: name, task: task})
}

// Initiate is safe to call more than once.
func (m *Manager) Initiate() {
	m.once.Do(func() {
		close(m.shutdown)
	})
}

func (m *Manager) Done() <-chan struct{} {
	return m.shutdown
}

// Wait blocks until shutdown is initiated, then runs the tasks.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.shutdown:
		m.logger.Info("shutdown | Starting shutdown sequence")
		return m.executeTasks()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) executeTasks() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	tasks := append([]namedTask(nil), m.tasks...)
	m.mu.Unlock()

	m.logger.Debug("shutdown | executing %d tasks before shutdown", len(tasks))
	var errs []error
	for i, t := range tasks {
		m.logger.Info("shutdown | Executing shutdown task %d: %s", i+1, t.name)

		done := make(chan error, 1)
		go func() {
			done <- t.task()
		}()

		select {
		case err := <-done:
			if err != nil {
				m.logger.Error("shutdown | Task failed, task: %s, error: %s", t.name, err)
				errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			}
		case <-ctx.Done():
			m.logger.Error("shutdown | Timed out during task %s", t.name)
			return errors.Join(append(errs, fmt.Errorf("%s: %w", t.name, ctx.Err()))...)
		}
	}

	return errors.Join(errs...)
}
