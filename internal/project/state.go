// Package project implements the lifecycle state machine for deployed
// services. A project's container moves through
// creating -> attaching -> starting -> started -> {ready | stopping} ->
// stopped, with an absorbing errored state reachable from anywhere.
// State values are immutable between ticks and owned exclusively by the
// project's driver; the only cross-task effects of a transition are the
// address registry updates.
package project

import (
	"context"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// Kind identifies a lifecycle state. The set is closed; drivers and the
// control-plane API switch over it exhaustively.
type Kind int

const (
	KindCreating Kind = iota
	KindAttaching
	KindStarting
	KindStarted
	KindReady
	KindStopping
	KindStopped
	KindErrored
	KindDestroyed
)

// String returns the control-plane name of the state.
func (k Kind) String() string {
	switch k {
	case KindCreating:
		return "creating"
	case KindAttaching:
		return "attaching"
	case KindStarting:
		return "starting"
	case KindStarted:
		return "started"
	case KindReady:
		return "ready"
	case KindStopping:
		return "stopping"
	case KindStopped:
		return "stopped"
	case KindErrored:
		return "errored"
	case KindDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// State is one step of the lifecycle. Next computes the following state
// given the environment and the project's metadata. A returned error is
// classified by the engine: context timeouts are retried on the next
// tick, everything else becomes the errored state.
type State interface {
	Kind() Kind
	Next(ctx context.Context, env *Env, proj *Project) (State, error)
}

// Terminal reports whether the automatic driver stops advancing the
// state. Stopped projects wait for an external wake, errored ones for
// operator intervention.
func Terminal(s State) bool {
	switch s.Kind() {
	case KindStopped, KindErrored, KindDestroyed:
		return true
	}
	return false
}

// Container returns the state's cached container descriptor, if it
// carries one.
func Container(s State) *backend.Container {
	switch v := s.(type) {
	case *Attaching:
		return v.Container
	case *Starting:
		return v.Container
	case *Started:
		return v.Container
	case *Ready:
		return v.Container
	case *Stopping:
		return v.Container
	case *Stopped:
		return v.Container
	case *Errored:
		return v.Container
	}
	return nil
}

// Stopped is the resting state of an idled project. The container still
// exists; an external wake re-enters creating, which reuses it.
type Stopped struct {
	Container *backend.Container
}

func (s *Stopped) Kind() Kind { return KindStopped }

func (s *Stopped) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	return s, nil
}

// Errored is the absorbing failure state. It carries a classification
// and message for the control-plane API; recovery is a manual retry or
// deletion.
type Errored struct {
	Reason    models.ErrorKind
	Message   string
	Container *backend.Container
}

func (e *Errored) Kind() Kind { return KindErrored }

func (e *Errored) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	return e, nil
}

// ProjectError returns the API representation of the failure.
func (e *Errored) ProjectError() *models.ProjectError {
	return &models.ProjectError{Kind: e.Reason, Message: e.Message}
}

// Destroyed marks a deleted project. Only Driver.Destroy sets it, after
// the loop has exited.
type Destroyed struct{}

func (d *Destroyed) Kind() Kind { return KindDestroyed }

func (d *Destroyed) Next(ctx context.Context, env *Env, proj *Project) (State, error) {
	return d, nil
}
