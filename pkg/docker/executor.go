package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const (
	defaultShell = "sh"
	maxOutput    = 4096
)

var (
	ErrNoContainer  = errors.New("no container configured")
	ErrEmptyCommand = errors.New("job payload is empty")
)

// ExecAPI is the subset of the Docker client the executor needs.
type ExecAPI interface {
	ContainerExecCreate(ctx context.Context, container string, config dockerTypes.ExecConfig) (dockerTypes.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config dockerTypes.ExecStartCheck) (dockerTypes.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (dockerTypes.ContainerExecInspect, error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("task exited with code %d", e.Code)
}

// Executor runs a job's payload with "<shell> -c" in one container.
type Executor struct {
	api       ExecAPI
	container string
	shell     string
	logger    logger.Logger
}

func NewExecutor(api ExecAPI, config types.DockerConfig, log logger.Logger) *Executor {
	shell := config.Shell
	if shell == "" {
		shell = defaultShell
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{
		api:       api,
		container: config.Container,
		shell:     shell,
		logger:    log.WithField("component", "docker-executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, j job.Job) error {
	if e.container == "" {
		return ErrNoContainer
	}
	task := strings.TrimSpace(string(j.Payload))
	if task == "" {
		return ErrEmptyCommand
	}

	output, err := e.ExecuteTask(ctx, e.container, task)
	log := logger.FromContext(ctx, e.logger.WithField("job", j.Name)).
		WithField("container", e.container)
	if err != nil {
		log.Warn("task failed: %s, output: %s", err, output)
		return err
	}
	log.Debug("task output: %s", output)
	return nil
}

// ExecuteTask runs task inside containerID and returns its combined output,
// truncated to the first few kilobytes.
func (e *Executor) ExecuteTask(ctx context.Context, containerID, task string) (string, error) {
	execConfig := dockerTypes.ExecConfig{
		Cmd:          []string{e.shell, "-c", task},
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := e.api.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create exec: %w", err)
	}

	resp, err := e.api.ContainerExecAttach(ctx, execID.ID, dockerTypes.ExecStartCheck{})
	if err != nil {
		return "", fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	copied := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader)
		copied <- err
	}()

	select {
	case err := <-copied:
		if err != nil {
			return "", fmt.Errorf("failed to read output: %w", err)
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}

	output := truncate(stdout.String() + stderr.String())

	inspect, err := e.api.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return output, fmt.Errorf("failed to inspect exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return output, &ExitError{Code: inspect.ExitCode, Output: output}
	}
	return output, nil
}

func truncate(s string) string {
	if len(s) <= maxOutput {
		return s
	}
	return s[:maxOutput]
}
