// Package tunnel exposes the chat listener on a remote SSH gateway
// (the equivalent of ssh -R), so clients that cannot reach this host
// directly can connect to the gateway instead.  It is backed by
// golang.org/x/crypto/ssh.
package tunnel

import (
	"context"
	"net"
)

// Tunnel abstracts an SSH connection that can accept connections on
// the gateway's side.
type Tunnel interface {
	// Connect establishes the SSH connection to the gateway.
	Connect(ctx context.Context) error

	// Listen asks the gateway to bind bindAddr:port and returns a
	// listener that yields every connection forwarded back to us.
	Listen(bindAddr string, port int) (net.Listener, error)

	// Close tears down the tunnel and frees resources.
	Close() error

	// IsAlive reports whether the underlying connection is still up.
	IsAlive() bool
}
