package backend

import (
	"fmt"
	"strings"

	dockerclient "github.com/docker/docker/client"
)

// NewClient returns a Docker client for the given socket. An empty
// socket falls back to environment-based configuration (DOCKER_HOST et
// al.), which is the common case for a local daemon.
//
// The returned client is shared read-only across all project drivers;
// the caller owns its lifetime and closes it on shutdown.
func NewClient(socket string) (*dockerclient.Client, error) {
	if socket == "" {
		client, err := dockerclient.NewClientWithOpts(
			dockerclient.FromEnv,
			dockerclient.WithAPIVersionNegotiation(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Docker client: %w", err)
		}
		return client, nil
	}

	host := socket
	if !strings.Contains(socket, "://") {
		host = "unix://" + socket
	}

	client, err := dockerclient.NewClientWithOpts(
		dockerclient.WithHost(host),
		dockerclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for %s: %w", host, err)
	}

	return client, nil
}
