package docker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	dockerClient "github.com/docker/docker/client"

	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Get default Docker host based on OS
func getDefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		// Docker Desktop usually uses the named pipe
		return "npipe:////./pipe/docker_engine"
	}
	return "unix:///var/run/docker.sock"
}

func hostFromSocketPath(socketPath string) string {
	if socketPath == "" {
		return getDefaultSocketPath()
	}
	return "unix://" + socketPath
}

// Try alternative socket paths
func tryAlternativeSocketPaths(ctx context.Context, log logger.Logger) (*dockerClient.Client, error) {
	alternativePaths := []string{
		"npipe:////./pipe/docker_engine",
		"unix://" + `\\wsl$\docker-desktop-data\version-pack-data\community\docker\docker.sock`,
		"unix://" + `\\wsl.localhost\docker-desktop-data\version-pack-data\community\docker\docker.sock`,
		"unix:///var/run/docker.sock",
		"unix:///run/user/1000/docker.sock",
	}

	var lastErr error
	for _, path := range alternativePaths {
		cli, err := connect(ctx, path)
		if err != nil {
			log.Debug("docker host %s unavailable: %s", path, err)
			lastErr = err
			continue
		}
		log.Info("connected to docker at %s", path)
		return cli, nil
	}

	return nil, fmt.Errorf("failed to connect to Docker using any socket path. Last error: %w", lastErr)
}

func connect(ctx context.Context, host string) (*dockerClient.Client, error) {
	cli, err := dockerClient.NewClientWithOpts(
		dockerClient.WithHost(host),
		dockerClient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := cli.Ping(pctx); err != nil {
		cli.Close()
		return nil, err
	}
	return cli, nil
}
