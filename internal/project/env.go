package project

import (
	"context"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// Project is the per-project metadata the state machine reads. It is
// created once by the gateway service and never mutated by transitions;
// the mutable part of a project is its State.
type Project struct {
	ID        string
	Name      string
	AccountID string

	// InitialKey is the secret handed to the service at container
	// creation, issued by the external auth collaborator.
	InitialKey string

	// KeyHash is the bcrypt digest of InitialKey, kept so the key can
	// be verified without storing it anywhere else.
	KeyHash string

	// IdleMinutes sizes the CPU sample window and the auto-stop delay.
	// Zero disables idle detection.
	IdleMinutes uint

	// RecreateCount tracks how many times the backing container has
	// been rebuilt (incremented on wake by the gateway service).
	RecreateCount int

	CreatedAt time.Time
}

// Registry is the address registry as seen from transitions: publish on
// entering ready, remove before an idle stop. The concrete
// implementation lives in the gateway package.
type Registry interface {
	Publish(project string, addr models.TargetAddress)
	Remove(project string)
}

// HealthChecker pings a service's management port.
type HealthChecker interface {
	Ping(ctx context.Context, addr string) error
}

// Config is the slice of platform configuration the state machine needs.
type Config struct {
	// NetworkName is the single shared network all project containers
	// attach to.
	NetworkName string

	// Image is the runtime image projects are deployed from.
	Image string

	// IdleCPUThreshold is the activity cutoff in cumulative CPU-time
	// units per minute. A full sample window averaging below it idles
	// the project. The default is empirical; see config defaults.
	IdleCPUThreshold uint64

	// StartTimeout bounds how long starting waits for the daemon to
	// report the container running.
	StartTimeout time.Duration

	// StopTimeout is the graceful-stop budget handed to the daemon.
	StopTimeout time.Duration

	// TransitionTimeout bounds a single Next invocation.
	TransitionTimeout time.Duration

	// PollInterval paces the fast startup transitions. Zero means the
	// driver default.
	PollInterval time.Duration
}

// Env is the context handed to every transition: the backend adapter,
// the registry, the health client and configuration. It is shared
// read-only across all project drivers.
type Env struct {
	Backend  backend.Backend
	Registry Registry
	Health   HealthChecker
	Config   Config
}
