// Package docker runs job payloads as shell commands inside a container.
package docker

import (
	"context"
	"fmt"

	dockerClient "github.com/docker/docker/client"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

// NewClient connects to the configured socket, falling back to the usual
// platform locations when it does not answer a ping.
func NewClient(ctx context.Context, config types.DockerConfig, log logger.Logger) (*dockerClient.Client, error) {
	host := hostFromSocketPath(config.SocketPath)

	cli, err := connect(ctx, host)
	if err == nil {
		return cli, nil
	}

	log.Warn("Docker connection test failed %s", err.Error())
	log.Info("Trying alternative Docker socket paths...")
	cli, err = tryAlternativeSocketPaths(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Docker: %w", err)
	}
	return cli, nil
}
