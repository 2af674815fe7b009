package transport

import (
	"context"
	"net"
	"time"

	ncerr "chatserve/internal/errors"
)

// TCPListener binds a plain IPv4 TCP socket.
type TCPListener struct {
	Address string // ":port" listens on every interface
}

// Listen binds the address.  The kernel backlog is whatever Go picks;
// clients that connect while a chat is running wait in it until the
// accept loop comes back.
func (l *TCPListener) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp4", l.Address)
	if err != nil {
		return nil, ncerr.Wrap("listen", l.Address, err)
	}
	return ln, nil
}

// Close is a no-op: the net.Listener is owned by the caller.
func (l *TCPListener) Close() error { return nil }

// TCPDialer establishes plain TCP connections.
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, ncerr.Wrap("dial", address, err)
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
