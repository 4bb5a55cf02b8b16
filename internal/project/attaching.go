package project

import (
	"context"
	"fmt"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// Attaching moves the container onto the single shared project network.
// The daemon sometimes leaves containers half-attached (a stop during
// attach, an engine restart), so the state first disconnects from every
// network it finds and then connects fresh. "Already disconnected" and
// "already connected" responses count as success; any other network
// error is fatal and classified as a no-network failure.
type Attaching struct {
	Container *backend.Container
}

func (s *Attaching) Kind() Kind { return KindAttaching }

func (s *Attaching) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	c := s.Container

	for networkName := range c.Networks {
		err := env.Backend.DisconnectNetwork(ctx, networkName, c.ID)
		if err != nil && !backend.IsBenignDisconnect(err) {
			return &Errored{
				Reason:    models.ErrorKindNoNetwork,
				Message:   fmt.Sprintf("failed to disconnect container from network %s: %v", networkName, err),
				Container: c,
			}, nil
		}
	}

	err := env.Backend.ConnectNetwork(ctx, env.Config.NetworkName, c.ID)
	if err != nil && !backend.IsBenignConnect(err) {
		return &Errored{
			Reason:    models.ErrorKindNoNetwork,
			Message:   fmt.Sprintf("failed to connect container to network %s: %v", env.Config.NetworkName, err),
			Container: c,
		}, nil
	}

	refreshed, err := env.Backend.InspectContainer(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh container %s after attach: %w", c.Name, err)
	}

	return &Starting{Container: refreshed, Since: time.Now()}, nil
}
