package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"chatserve/tunnel"
	"chatserve/util"
)

// SSHReverseListener serves chat clients that connect to a port on an
// SSH gateway.  The SSH connection is made on Listen and torn down on
// Close.
type SSHReverseListener struct {
	Tunnel     tunnel.Tunnel
	BindAddr   string // gateway-side bind address ("" lets the gateway pick)
	RemotePort int
	Logger     *util.Logger

	mu        sync.Mutex
	connected bool
}

// NewSSHReverseListener returns a listener that forwards
// bindAddr:remotePort on the gateway described by cfg.
func NewSSHReverseListener(cfg *tunnel.SSHConfig, bindAddr string, remotePort int, logger *util.Logger) *SSHReverseListener {
	return &SSHReverseListener{
		Tunnel:     tunnel.NewSSHTunnel(cfg, logger),
		BindAddr:   bindAddr,
		RemotePort: remotePort,
		Logger:     logger,
	}
}

// Listen connects to the gateway (once) and requests the forward.
func (l *SSHReverseListener) Listen(ctx context.Context) (net.Listener, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		l.Logger.Verbose("connecting to SSH gateway %v", l.Tunnel)
		if err := l.Tunnel.Connect(ctx); err != nil {
			return nil, fmt.Errorf("reverse tunnel: %w", err)
		}
		l.connected = true
	}

	ln, err := l.Tunnel.Listen(l.BindAddr, l.RemotePort)
	if err != nil {
		return nil, fmt.Errorf("reverse tunnel: %w", err)
	}
	return ln, nil
}

// Close tears down the SSH connection.
func (l *SSHReverseListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return nil
	}
	l.connected = false
	return l.Tunnel.Close()
}
