package project

import (
	"context"
	"fmt"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// HealthGracePeriod is how long a container may stay unhealthy after its
// recorded start time before the project errors out. It is enforced by
// wall-clock comparison on every tick, not by a single blocking wait.
const HealthGracePeriod = 120 * time.Second

// Started is the steady evaluation state. Each tick refreshes the
// descriptor, pings the service's management port and, when idle
// detection is on, feeds one CPU sample into the window to decide
// between ready and stopping.
type Started struct {
	Container *backend.Container
	Window    *CPUWindow
}

func (s *Started) Kind() Kind { return KindStarted }

func (s *Started) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	c, err := env.Backend.InspectContainer(ctx, s.Container.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh container %s: %w", s.Container.Name, err)
	}

	if !c.Running {
		// The daemon is the source of truth; an out-of-band stop or OOM
		// kill surfaces here.
		return nil, fmt.Errorf("container %s is no longer running (status %s)", c.Name, c.Status)
	}

	addr, ok := containerAddress(c, env.Config.NetworkName, ManagementPort)
	if !ok {
		return &Errored{
			Reason:    models.ErrorKindNoNetwork,
			Message:   fmt.Sprintf("container %s has no address on network %s", c.Name, env.Config.NetworkName),
			Container: c,
		}, nil
	}

	if err := env.Health.Ping(ctx, addr.HostPort()); err != nil {
		if time.Since(c.StartedAt) > HealthGracePeriod {
			return &Errored{
				Reason:    models.ErrorKindTimeout,
				Message:   fmt.Sprintf("container %s did not become healthy in time: %v", c.Name, err),
				Container: c,
			}, nil
		}
		// Still within the grace window, retry on the next tick.
		return &Started{Container: c, Window: s.Window}, nil
	}

	if proj.IdleMinutes < 1 {
		return s.ready(env, proj, c), nil
	}

	sample, err := env.Backend.CPUUsage(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sample CPU usage for container %s: %w", c.Name, err)
	}

	s.Window.Push(sample, proj.IdleMinutes)

	if !s.Window.FullHistory() {
		// Not enough history to judge yet.
		return s.ready(env, proj, c), nil
	}

	if s.Window.RatePerMinute(proj.IdleMinutes) < env.Config.IdleCPUThreshold {
		return &Stopping{Container: c}, nil
	}

	return s.ready(env, proj, c), nil
}

// ready publishes the service address and hands over to the ready state.
// Publishing happens at the transition so the registry is visible to new
// proxy lookups before the state is observable as ready.
func (s *Started) ready(env *Env, proj *Project, c *backend.Container) State {
	if addr, ok := containerAddress(c, env.Config.NetworkName, ServicePort); ok {
		env.Registry.Publish(proj.Name, addr)
	}
	return &Ready{Container: c, Window: s.Window}
}

// Ready is the only state from which the proxy may forward traffic. It
// loops straight back into started so health and idleness keep being
// re-evaluated every tick.
type Ready struct {
	Container *backend.Container
	Window    *CPUWindow
}

func (r *Ready) Kind() Kind { return KindReady }

func (r *Ready) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	return &Started{Container: r.Container, Window: r.Window}, nil
}

// containerAddress resolves the container's endpoint on the shared
// network to a target address with the given port.
func containerAddress(c *backend.Container, networkName string, port int) (models.TargetAddress, bool) {
	endpoint, ok := c.Networks[networkName]
	if !ok || endpoint.IPAddress == "" {
		return models.TargetAddress{}, false
	}
	return models.TargetAddress{IP: endpoint.IPAddress, Port: port}, true
}
