package project

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestFatal = errors.New("network shuttle not found")

func waitForKind(t *testing.T, d *Driver, kind Kind, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if d.State().Kind() == kind {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("driver never reached %s, stuck in %s", kind, d.State().Kind())
}

func TestDriverAdvancesToReady(t *testing.T) {
	log := &oplog{}
	b := newMockBackend(log)
	reg := newMockRegistry(log)
	env := testEnv(b, reg, &mockHealth{})
	proj := testProject(0)

	d := NewDriver(proj, env, &Creating{}, time.Minute)
	d.poll = time.Millisecond
	d.Start()
	defer d.Stop()

	waitForKind(t, d, KindReady, 2*time.Second)
	assert.True(t, reg.has("hello"))
}

func TestDriverStopsOnTerminalState(t *testing.T) {
	log := &oplog{}
	b := newMockBackend(log)
	b.connectErr = errTestFatal
	env := testEnv(b, newMockRegistry(log), &mockHealth{})
	proj := testProject(0)

	d := NewDriver(proj, env, &Creating{}, time.Minute)
	d.poll = time.Millisecond
	d.Start()

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop after reaching errored")
	}

	require.Equal(t, KindErrored, d.State().Kind())
}

func TestDriverDestroyPinsState(t *testing.T) {
	log := &oplog{}
	b := newMockBackend(log)
	env := testEnv(b, newMockRegistry(log), &mockHealth{})
	proj := testProject(0)

	d := NewDriver(proj, env, &Creating{}, time.Minute)
	d.poll = time.Millisecond
	d.Start()
	waitForKind(t, d, KindReady, 2*time.Second)

	d.Destroy()

	require.Equal(t, KindDestroyed, d.State().Kind())
	assert.True(t, Terminal(d.State()))
}

func TestDriverStopBetweenTicks(t *testing.T) {
	log := &oplog{}
	b := newMockBackend(log)
	env := testEnv(b, newMockRegistry(log), &mockHealth{})
	proj := testProject(0)

	d := NewDriver(proj, env, &Creating{}, time.Minute)
	d.poll = 50 * time.Millisecond
	d.Start()

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
