package backend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/docker/docker/errdefs"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("some other error")))
	assert.True(t, IsNotFound(errdefs.NotFound(errors.New("No such container: shuttle_hello_run"))))
	assert.True(t, IsNotFound(fmt.Errorf("inspect: %w", errdefs.NotFound(errors.New("no such container")))))
}

func TestIsBenignDisconnect(t *testing.T) {
	assert.False(t, IsBenignDisconnect(nil))
	assert.False(t, IsBenignDisconnect(errors.New("network shuttle not found")))

	// Both daemon phrasings count as already-disconnected.
	assert.True(t, IsBenignDisconnect(errors.New("container abc123 is not connected to network bridge")))
	assert.True(t, IsBenignDisconnect(errors.New("container abc123 is not connected to the network bridge")))
}

func TestIsBenignConnect(t *testing.T) {
	assert.False(t, IsBenignConnect(nil))
	assert.False(t, IsBenignConnect(errors.New("network shuttle not found")))

	assert.True(t, IsBenignConnect(errors.New("endpoint with name shuttle_hello_run already exists in network shuttle")))
	assert.True(t, IsBenignConnect(errdefs.Conflict(errors.New("container already attached"))))
}
