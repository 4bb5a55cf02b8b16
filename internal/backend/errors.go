package backend

import (
	"strings"

	"github.com/docker/docker/errdefs"
)

// The daemon reports some nominal errors for operations that already hold
// in the desired state. Each call site's tolerance policy lives here so
// it can be audited and tested in isolation: a (dis)connect that is
// already in the requested state is reclassified as success, everything
// else stays an error.

// IsNotFound reports whether the error means the referenced object does
// not exist (a 404 from the daemon). On inspect this triggers creation
// rather than failure.
func IsNotFound(err error) bool {
	return err != nil && errdefs.IsNotFound(err)
}

// IsBenignDisconnect reports whether a network-disconnect error means
// the container was already detached. The daemon answers this with a
// 403/500-class error rather than a distinct code, so the message is
// matched.
func IsBenignDisconnect(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "is not connected to network") ||
		strings.Contains(msg, "is not connected to the network")
}

// IsBenignConnect reports whether a network-connect error means the
// container was already attached to the network.
func IsBenignConnect(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists in network") ||
		errdefs.IsConflict(err)
}
