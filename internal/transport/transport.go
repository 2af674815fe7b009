// Package transport provides abstractions for connection
// establishment.  Transports handle the "how" of reaching a peer
// (a local TCP socket or a port forwarded from an SSH gateway)
// independent of the conversation held over the connection.
package transport

import (
	"context"
	"net"
)

// Listener opens the socket the accept loop serves from.
type Listener interface {
	// Listen binds and returns a ready net.Listener.
	Listen(ctx context.Context) (net.Listener, error)

	// Close releases long-lived resources behind the listener (an SSH
	// connection, for example).  Stateless listeners return nil.
	Close() error
}

// Dialer opens outbound connections for client mode.
type Dialer interface {
	Dial(ctx context.Context, network, address string) (net.Conn, error)
	Close() error
}
