package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Docker implements Backend against a Docker Engine daemon.
type Docker struct {
	client *dockerclient.Client
}

// NewDocker wraps a Docker client in the Backend interface.
func NewDocker(client *dockerclient.Client) *Docker {
	return &Docker{client: client}
}

// CreateContainer creates a container from the spec and returns its ID.
func (d *Docker) CreateContainer(ctx context.Context, spec CreateSpec) (string, error) {
	exposedPorts := make(nat.PortSet)
	for _, port := range spec.ExposedPorts {
		natPort, err := nat.NewPort("tcp", strconv.Itoa(port))
		if err != nil {
			return "", fmt.Errorf("invalid port %d: %w", port, err)
		}
		exposedPorts[natPort] = struct{}{}
	}

	containerConfig := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		Labels:       spec.Labels,
		ExposedPorts: exposedPorts,
	}

	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			Memory:            spec.Memory,
			MemoryReservation: spec.MemoryReservation,
			CPUPeriod:         spec.CPUPeriod,
			CPUQuota:          spec.CPUQuota,
		},
	}

	networkConfig := &network.NetworkingConfig{}
	if spec.Network != "" {
		networkConfig.EndpointsConfig = map[string]*network.EndpointSettings{
			spec.Network: {},
		}
	}

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}

	return resp.ID, nil
}

// InspectContainer refreshes the container descriptor from the daemon.
func (d *Docker) InspectContainer(ctx context.Context, nameOrID string) (*Container, error) {
	info, err := d.client.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return nil, err
	}

	c := &Container{
		ID:       info.ID,
		Name:     info.Name,
		Networks: make(map[string]Endpoint),
	}

	if info.Config != nil {
		c.Image = info.Config.Image
		c.Labels = info.Config.Labels
	}

	if info.State != nil {
		c.Status = info.State.Status
		c.Running = info.State.Running
		// StartedAt is RFC3339Nano; the zero string means the container
		// has never been started.
		if t, err := time.Parse(time.RFC3339Nano, info.State.StartedAt); err == nil {
			c.StartedAt = t
		}
	}

	if info.NetworkSettings != nil {
		for name, endpoint := range info.NetworkSettings.Networks {
			if endpoint == nil {
				continue
			}
			c.Networks[name] = Endpoint{
				NetworkID: endpoint.NetworkID,
				IPAddress: endpoint.IPAddress,
			}
		}
	}

	return c, nil
}

// StartContainer starts the container. The daemon treats starting an
// already-running container as a no-op.
func (d *Docker) StartContainer(ctx context.Context, id string) error {
	if err := d.client.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", id, err)
	}
	return nil
}

// StopContainer gracefully stops the container within the timeout.
func (d *Docker) StopContainer(ctx context.Context, id string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	if err := d.client.ContainerStop(ctx, id, container.StopOptions{Timeout: &seconds}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

// RemoveContainer force-removes the container.
func (d *Docker) RemoveContainer(ctx context.Context, id string) error {
	if err := d.client.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

// ConnectNetwork attaches the container to the named network.
func (d *Docker) ConnectNetwork(ctx context.Context, networkName, containerID string) error {
	return d.client.NetworkConnect(ctx, networkName, containerID, &network.EndpointSettings{})
}

// DisconnectNetwork detaches the container from the named network.
func (d *Docker) DisconnectNetwork(ctx context.Context, networkName, containerID string) error {
	return d.client.NetworkDisconnect(ctx, networkName, containerID, true)
}

// EnsureNetwork creates the shared project network if it is missing.
func (d *Docker) EnsureNetwork(ctx context.Context, name string) error {
	_, err := d.client.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return fmt.Errorf("failed to inspect network %s: %w", name, err)
	}

	if _, err := d.client.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"}); err != nil {
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}
	return nil
}

// CPUUsage reads the container's cumulative CPU usage counter from a
// one-shot stats call.
func (d *Docker) CPUUsage(ctx context.Context, id string) (uint64, error) {
	resp, err := d.client.ContainerStatsOneShot(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to read stats for container %s: %w", id, err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, fmt.Errorf("failed to decode stats for container %s: %w", id, err)
	}

	return stats.CPUStats.CPUUsage.TotalUsage, nil
}

// ContainerLogs streams stdout and stderr of the container.
func (d *Docker) ContainerLogs(ctx context.Context, id string, opts LogsOptions) (io.ReadCloser, error) {
	tail := opts.Tail
	if tail == "" {
		tail = "100"
	}

	reader, err := d.client.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Timestamps: opts.Timestamps,
		Tail:       tail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for container %s: %w", id, err)
	}
	return reader, nil
}
