package project

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultTickInterval paces the started/ready evaluation loop. One
	// CPU sample lands in the window per tick, so the tick interval is
	// the window's sample spacing.
	DefaultTickInterval = time.Minute

	// pollInterval paces the fast startup transitions (creating,
	// attaching, starting, unhealthy retries) where waiting a full tick
	// would make deploys crawl.
	pollInterval = 5 * time.Second
)

// Driver advances one project's state machine. Transitions are strictly
// sequential: the loop never invokes Next while a previous invocation is
// pending, and Stop cancels between ticks, never mid-transition.
type Driver struct {
	proj     *Project
	env      *Env
	interval time.Duration
	poll     time.Duration

	mu    sync.RWMutex
	state State

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDriver returns a driver holding the initial state. It does not
// start ticking until Start is called.
func NewDriver(proj *Project, env *Env, initial State, tickInterval time.Duration) *Driver {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	poll := env.Config.PollInterval
	if poll <= 0 {
		poll = pollInterval
	}
	return &Driver{
		proj:     proj,
		env:      env,
		interval: tickInterval,
		poll:     poll,
		state:    initial,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the driver loop.
func (d *Driver) Start() {
	go d.run()
}

// Stop halts the loop after the in-flight transition, if any, completes.
// It is safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
}

// Destroy halts the loop and pins the state to Destroyed. The write
// does not violate the single-writer invariant: Stop waits for the loop
// to exit before the state is touched.
func (d *Driver) Destroy() {
	d.Stop()
	d.mu.Lock()
	d.state = &Destroyed{}
	d.mu.Unlock()
}

// State returns a snapshot of the current state for control-plane reads.
func (d *Driver) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Project returns the driver's immutable project metadata.
func (d *Driver) Project() *Project {
	return d.proj
}

// Done is closed once the loop has exited, whether by Stop or by
// reaching a terminal state.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) run() {
	defer close(d.done)

	ctx := context.Background()

	for {
		current := d.State()
		if Terminal(current) {
			return
		}

		next := Advance(ctx, d.env, d.proj, current)

		d.mu.Lock()
		d.state = next
		d.mu.Unlock()

		if next.Kind() != current.Kind() {
			log.Printf("project %s: %s -> %s", d.proj.Name, current.Kind(), next.Kind())
			if errored, ok := next.(*Errored); ok {
				log.Printf("project %s errored (%s): %s", d.proj.Name, errored.Reason, errored.Message)
			}
		}

		if Terminal(next) {
			return
		}

		// Ready waits a full tick before re-evaluating; everything else
		// advances on the fast poll so startup is not paced in minutes.
		delay := d.poll
		if next.Kind() == KindReady {
			delay = d.interval
		}

		select {
		case <-time.After(delay):
		case <-d.stop:
			return
		}
	}
}
