package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/internal/auth"
	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/internal/project"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

var (
	// ErrProjectNotFound is returned for operations on unknown projects.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectExists is returned when creating a duplicate project.
	ErrProjectExists = errors.New("project already exists")
	// ErrProjectNotAsleep is returned when waking a project that is not
	// stopped or errored.
	ErrProjectNotAsleep = errors.New("project is not stopped or errored")
)

type entry struct {
	proj   *project.Project
	driver *project.Driver
}

// Service is the control-plane owner of all projects. It creates and
// wakes drivers, and is the only component allowed to stop them; the
// single-writer invariant on project state is preserved because every
// entry has exactly one driver at a time.
type Service struct {
	env      *project.Env
	registry *Registry
	tick     time.Duration

	mu       sync.RWMutex
	projects map[string]*entry
}

// NewService returns a project service advancing drivers on the given
// tick interval.
func NewService(env *project.Env, registry *Registry, tickInterval time.Duration) *Service {
	return &Service{
		env:      env,
		registry: registry,
		tick:     tickInterval,
		projects: make(map[string]*entry),
	}
}

// CreateProject registers a new project and starts its lifecycle from
// creating. The initial key is generated here and handed to the
// container environment; the external auth service learns it via the
// deploy pipeline.
func (s *Service) CreateProject(name, accountID string, idleMinutes uint) (*models.ProjectStatus, error) {
	key, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project key: %w", err)
	}
	keyHash, err := auth.HashAPIKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to hash project key: %w", err)
	}

	proj := &project.Project{
		ID:          models.GenerateID("project"),
		Name:        name,
		AccountID:   accountID,
		InitialKey:  key,
		KeyHash:     keyHash,
		IdleMinutes: idleMinutes,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	if _, ok := s.projects[name]; ok {
		s.mu.Unlock()
		return nil, ErrProjectExists
	}
	e := &entry{
		proj:   proj,
		driver: project.NewDriver(proj, s.env, &project.Creating{}, s.tick),
	}
	s.projects[name] = e
	driver := e.driver
	status := s.statusOf(e)
	s.mu.Unlock()

	driver.Start()
	log.Printf("project %s created (idle minutes %d)", name, idleMinutes)

	return status, nil
}

// Wake restarts the lifecycle of a stopped or errored project. The
// existing container is reused by the creating state if it survived.
func (s *Service) Wake(name string) (*models.ProjectStatus, error) {
	s.mu.Lock()
	e, ok := s.projects[name]
	if !ok {
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}

	state := e.driver.State()
	if !project.Terminal(state) {
		s.mu.Unlock()
		return nil, ErrProjectNotAsleep
	}

	e.driver.Stop()
	e.proj.RecreateCount++
	e.driver = project.NewDriver(e.proj, s.env, &project.Creating{}, s.tick)
	driver := e.driver
	recreates := e.proj.RecreateCount
	status := s.statusOf(e)
	s.mu.Unlock()

	driver.Start()
	log.Printf("project %s woken (recreate count %d)", name, recreates)

	return status, nil
}

// Delete stops the driver, withdraws the address and removes the
// backing container. The registry entry goes first so no new traffic is
// routed while the container is being torn down.
func (s *Service) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.projects[name]
	if !ok {
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	delete(s.projects, name)
	driver := e.driver
	s.mu.Unlock()

	driver.Destroy()
	s.registry.Remove(name)

	containerName := project.ContainerName(name)
	c, err := s.env.Backend.InspectContainer(ctx, containerName)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect container for project %s: %w", name, err)
	}

	if err := s.env.Backend.RemoveContainer(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to remove container for project %s: %w", name, err)
	}

	log.Printf("project %s deleted", name)
	return nil
}

// Get returns the status of a single project.
func (s *Service) Get(name string) (*models.ProjectStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[name]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return s.statusOf(e), nil
}

// List returns the status of every project.
func (s *Service) List() []*models.ProjectStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	statuses := make([]*models.ProjectStatus, 0, len(s.projects))
	for _, e := range s.projects {
		statuses = append(statuses, s.statusOf(e))
	}
	return statuses
}

// ContainerID resolves the project's current container for log access.
func (s *Service) ContainerID(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[name]
	if !ok {
		return "", ErrProjectNotFound
	}
	if c := project.Container(e.driver.State()); c != nil {
		return c.ID, nil
	}
	return "", fmt.Errorf("project %s has no container yet", name)
}

// Shutdown stops every driver. Transitions in flight complete first;
// containers are left as they are, ready for the next process start.
func (s *Service) Shutdown() {
	s.mu.Lock()
	drivers := make([]*project.Driver, 0, len(s.projects))
	for _, e := range s.projects {
		drivers = append(drivers, e.driver)
	}
	s.mu.Unlock()

	for _, d := range drivers {
		d.Stop()
	}
}

// statusOf must be called with s.mu held: Wake replaces the driver and
// bumps the recreate count, so the entry fields it reads are only
// stable under the lock.
func (s *Service) statusOf(e *entry) *models.ProjectStatus {
	state := e.driver.State()

	status := &models.ProjectStatus{
		ID:            e.proj.ID,
		Name:          e.proj.Name,
		AccountID:     e.proj.AccountID,
		State:         state.Kind().String(),
		IdleMinutes:   e.proj.IdleMinutes,
		RecreateCount: e.proj.RecreateCount,
		CreatedAt:     e.proj.CreatedAt,
	}

	if c := project.Container(state); c != nil {
		status.ContainerID = c.ID
	}
	if errored, ok := state.(*project.Errored); ok {
		status.Error = errored.ProjectError()
	}
	if addr, ok := s.registry.Lookup(e.proj.Name); ok {
		status.Address = &addr
	}

	return status
}
