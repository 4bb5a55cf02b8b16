package project

import (
	"context"
	"fmt"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
)

// Stopping idles the project. The registry entry is removed before the
// stop request is issued so no new traffic is routed to a container that
// is about to shut down; connections already forwarded drain naturally.
type Stopping struct {
	Container *backend.Container
}

func (s *Stopping) Kind() Kind { return KindStopping }

func (s *Stopping) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	env.Registry.Remove(proj.Name)

	if err := env.Backend.StopContainer(ctx, s.Container.ID, env.Config.StopTimeout); err != nil {
		return nil, fmt.Errorf("failed to stop container %s: %w", s.Container.Name, err)
	}

	return &Stopped{Container: s.Container}, nil
}
