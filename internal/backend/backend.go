// Package backend is a thin adapter over a Docker-Engine-compatible
// daemon. The project state machine drives containers exclusively
// through the Backend interface; nothing above this package touches the
// Docker API types directly.
package backend

import (
	"context"
	"io"
	"time"
)

// Container is a cached descriptor of a backend container. The daemon is
// the source of truth and can change container state out-of-band (manual
// restarts, OOM kills), so callers refresh the descriptor with
// InspectContainer before trusting it.
type Container struct {
	ID        string
	Name      string
	Image     string
	Status    string
	Running   bool
	StartedAt time.Time
	Labels    map[string]string

	// Networks maps network name to the container's endpoint on it.
	Networks map[string]Endpoint
}

// Endpoint is a container's attachment to a single network.
type Endpoint struct {
	NetworkID string
	IPAddress string
}

// CreateSpec describes a container to create.
type CreateSpec struct {
	Name   string
	Image  string
	Env    []string
	Labels map[string]string

	// ExposedPorts lists TCP ports the container declares.
	ExposedPorts []int

	// Memory is the hard memory ceiling in bytes, MemoryReservation the
	// soft reservation. CPUPeriod/CPUQuota form the CFS quota pair.
	Memory            int64
	MemoryReservation int64
	CPUPeriod         int64
	CPUQuota          int64

	// Network, when set, is attached at creation time.
	Network string
}

// LogsOptions controls a container log stream.
type LogsOptions struct {
	Follow     bool
	Tail       string
	Timestamps bool
}

// Backend is the container engine contract consumed by the state
// machine, the gateway service and the control-plane API.
type Backend interface {
	// CreateContainer creates a container and returns its ID. It does
	// not start it.
	CreateContainer(ctx context.Context, spec CreateSpec) (string, error)

	// InspectContainer refreshes the descriptor for a container by name
	// or ID. A missing container yields an error satisfying IsNotFound.
	InspectContainer(ctx context.Context, nameOrID string) (*Container, error)

	// StartContainer starts a created or stopped container. Starting an
	// already-running container is a no-op.
	StartContainer(ctx context.Context, id string) error

	// StopContainer requests a graceful stop, waiting up to timeout
	// before the daemon kills the container.
	StopContainer(ctx context.Context, id string, timeout time.Duration) error

	// RemoveContainer force-removes a container.
	RemoveContainer(ctx context.Context, id string) error

	// ConnectNetwork attaches the container to a network. Attaching a
	// container that is already attached yields an error satisfying
	// IsBenignConnect.
	ConnectNetwork(ctx context.Context, networkName, containerID string) error

	// DisconnectNetwork detaches the container from a network.
	// Detaching a container that is not attached yields an error
	// satisfying IsBenignDisconnect.
	DisconnectNetwork(ctx context.Context, networkName, containerID string) error

	// EnsureNetwork creates the named bridge network if it does not
	// already exist.
	EnsureNetwork(ctx context.Context, name string) error

	// CPUUsage returns the container's cumulative CPU usage counter
	// from a one-shot stats read. Units are engine-specific; only
	// deltas are meaningful.
	CPUUsage(ctx context.Context, id string) (uint64, error)

	// ContainerLogs streams container output.
	ContainerLogs(ctx context.Context, id string, opts LogsOptions) (io.ReadCloser, error)
}
