package project

import (
	"context"
	"fmt"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// Starting asks the daemon to start the container and polls the
// descriptor until it reports running. The wait is bounded by the
// configured start timeout, measured from when attaching handed over.
type Starting struct {
	Container *backend.Container
	Since     time.Time
}

func (s *Starting) Kind() Kind { return KindStarting }

func (s *Starting) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	if err := env.Backend.StartContainer(ctx, s.Container.ID); err != nil {
		return nil, fmt.Errorf("failed to start container %s: %w", s.Container.Name, err)
	}

	c, err := env.Backend.InspectContainer(ctx, s.Container.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh container %s: %w", s.Container.Name, err)
	}

	if c.Running {
		return &Started{Container: c, Window: NewCPUWindow()}, nil
	}

	if time.Since(s.Since) > env.Config.StartTimeout {
		return &Errored{
			Reason:    models.ErrorKindTimeout,
			Message:   fmt.Sprintf("container %s did not start within %s", c.Name, env.Config.StartTimeout),
			Container: c,
		}, nil
	}

	return &Starting{Container: c, Since: s.Since}, nil
}
