package job

import (
	"context"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

// Executor performs a job's side effect. Implementations must honour ctx;
// the registry bounds every call with the configured job timeout.
type Executor interface {
	Execute(ctx context.Context, j Job) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, j Job) error

func (f ExecutorFunc) Execute(ctx context.Context, j Job) error {
	return f(ctx, j)
}

// LogExecutor only records that the job fired, on the run logger carried by
// ctx when there is one.
type LogExecutor struct {
	Logger logger.Logger
}

func (e LogExecutor) Execute(ctx context.Context, j Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := e.Logger
	if base == nil {
		base = logger.NewNop()
	}
	logger.FromContext(ctx, base.WithField("job", j.Name)).
		WithField("payload", string(j.Payload)).
		Info("job fired")
	return nil
}
