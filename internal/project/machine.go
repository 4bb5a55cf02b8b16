package project

import (
	"context"
	"errors"
	"time"

	"github.com/shuttle-hq/shuttle-sub002/models"
)

// DefaultTransitionTimeout bounds a single Next invocation when the
// configuration does not say otherwise. No transition may block forever.
const DefaultTransitionTimeout = 30 * time.Second

// Advance runs one transition of the state machine. The engine is
// state-agnostic: it applies the transition timeout, invokes Next, and
// classifies the outcome.
//
//   - A context timeout is treated as a transient backend hiccup: the
//     current state is kept and retried on the next tick.
//   - Any other error is terminal and becomes the errored state with an
//     internal classification.
//   - On entering a non-serving terminal state the registry entry is
//     removed, so the address-iff-ready invariant holds no matter which
//     transition failed.
func Advance(ctx context.Context, env *Env, proj *Project, s State) State {
	if Terminal(s) {
		return s
	}

	timeout := env.Config.TransitionTimeout
	if timeout <= 0 {
		timeout = DefaultTransitionTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	next, err := s.Next(tctx, env, proj)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return s
		}
		next = &Errored{
			Reason:    models.ErrorKindInternal,
			Message:   err.Error(),
			Container: Container(s),
		}
	}

	if next.Kind() == KindErrored || next.Kind() == KindStopped {
		env.Registry.Remove(proj.Name)
	}

	return next
}
