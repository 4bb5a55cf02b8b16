// Package runtime holds the control-plane client for services running
// inside project containers. Each container exposes a management port,
// separate from its public HTTP port, that answers WebSocket ping
// control frames.
package runtime

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultHealthTimeout bounds the whole ping round trip: handshake,
// ping write and pong read.
const DefaultHealthTimeout = 2 * time.Second

// HealthClient performs ping/pong health checks against a container's
// management port.
type HealthClient struct {
	timeout time.Duration
	dialer  *websocket.Dialer
}

// NewHealthClient returns a health client with the given round-trip
// timeout. A non-positive timeout falls back to DefaultHealthTimeout.
func NewHealthClient(timeout time.Duration) *HealthClient {
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	return &HealthClient{
		timeout: timeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

// Ping dials the management port at addr (host:port), sends a ping
// control frame and waits for the pong. Any failure within the timeout
// means the service is not (yet) healthy.
func (c *HealthClient) Ping(ctx context.Context, addr string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := url.URL{Scheme: "ws", Host: addr, Path: "/"}
	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("health handshake to %s failed: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("health check to %s: %w", addr, err)
	}
	if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
		return fmt.Errorf("health ping to %s failed: %w", addr, err)
	}

	// Control frames are only processed while a read is in flight. The
	// read unblocks on pong (via the handler closing the channel path),
	// on deadline, or on connection close.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	select {
	case <-pong:
		return nil
	case err := <-readErr:
		return fmt.Errorf("health pong from %s not received: %w", addr, err)
	case <-ctx.Done():
		return fmt.Errorf("health check to %s: %w", addr, ctx.Err())
	}
}
