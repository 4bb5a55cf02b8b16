package project

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
)

// Resource limits and ports are fixed platform policy, not per-project
// configuration.
const (
	// ServicePort is the container port public traffic is proxied to.
	ServicePort = 8000

	// ManagementPort answers the health-check ping, independent of the
	// service's public port.
	ManagementPort = 8001

	memoryLimit       = 4 * 1024 * 1024 * 1024 // hard ceiling
	memoryReservation = 2 * 1024 * 1024 * 1024 // soft reservation
	cpuPeriod         = 100_000
	cpuQuota          = 400_000 // four CPUs worth of quota per period
)

// Container labels identifying platform-managed containers.
const (
	LabelProject     = "shuttle.project"
	LabelProjectID   = "shuttle.project-id"
	LabelIdleMinutes = "shuttle.idle-minutes"
)

// ContainerName returns the deterministic container name for a project,
// which makes creation idempotent across driver restarts.
func ContainerName(project string) string {
	return "shuttle_" + project + "_run"
}

// Creating looks up the project's container by its deterministic name
// and creates it if absent. Re-entering creating for an existing
// container (a wake after an idle stop, or a crashed driver) reuses it.
type Creating struct{}

func (s *Creating) Kind() Kind { return KindCreating }

func (s *Creating) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	name := ContainerName(proj.Name)

	c, err := env.Backend.InspectContainer(ctx, name)
	if err != nil {
		if !backend.IsNotFound(err) {
			return nil, fmt.Errorf("failed to inspect container %s: %w", name, err)
		}

		spec := backend.CreateSpec{
			Name:  name,
			Image: env.Config.Image,
			Env: []string{
				"SHUTTLE_PROJECT=" + proj.Name,
				"SHUTTLE_API_KEY=" + proj.InitialKey,
				fmt.Sprintf("SHUTTLE_CONTROL_PORT=%d", ManagementPort),
				fmt.Sprintf("SHUTTLE_SERVICE_PORT=%d", ServicePort),
			},
			Labels: map[string]string{
				LabelProject:     proj.Name,
				LabelProjectID:   proj.ID,
				LabelIdleMinutes: strconv.FormatUint(uint64(proj.IdleMinutes), 10),
			},
			ExposedPorts:      []int{ServicePort, ManagementPort},
			Memory:            memoryLimit,
			MemoryReservation: memoryReservation,
			CPUPeriod:         cpuPeriod,
			CPUQuota:          cpuQuota,
		}

		if _, err := env.Backend.CreateContainer(ctx, spec); err != nil {
			return nil, fmt.Errorf("failed to create container %s: %w", name, err)
		}

		c, err = env.Backend.InspectContainer(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect created container %s: %w", name, err)
		}
	}

	return &Attaching{Container: c}, nil
}
