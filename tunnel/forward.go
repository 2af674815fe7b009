package tunnel

// forward.go - net.Listener over SSH "forwarded-tcpip" channels.
//
// ssh.Client.Listen only accepts channels whose reported bind address
// matches the string it sent, and many gateways answer with a
// normalised address ("0.0.0.0" for ""), so every chat client would be
// refused.  We register our own forwarded-tcpip handler instead and
// take every channel the gateway opens.

import (
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	ncerr "chatserve/internal/errors"
)

// RFC 4254 §7.1 "tcpip-forward" / "cancel-tcpip-forward" payload.
type forwardRequest struct {
	Addr string
	Port uint32
}

// RFC 4254 §7.2 "forwarded-tcpip" channel payload.
type forwardedOrigin struct {
	Addr       string
	Port       uint32
	OriginAddr string
	OriginPort uint32
}

// forwardListener hands out one net.Conn per forwarded channel.
type forwardListener struct {
	client   *ssh.Client
	req      forwardRequest
	incoming <-chan ssh.NewChannel
	done     chan struct{}
	once     sync.Once
}

// listenRemoteForward asks the gateway to listen on bindAddr:port.
func listenRemoteForward(client *ssh.Client, bindAddr string, port int) (net.Listener, error) {
	incoming := client.HandleChannelOpen("forwarded-tcpip")
	if incoming == nil {
		return nil, fmt.Errorf("a remote forward is already active on this connection")
	}

	req := forwardRequest{Addr: bindAddr, Port: uint32(port)}
	ok, _, err := client.SendRequest("tcpip-forward", true, ssh.Marshal(&req))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("gateway refused to listen on %s:%d", bindAddr, port)
	}

	return &forwardListener{
		client:   client,
		req:      req,
		incoming: incoming,
		done:     make(chan struct{}),
	}, nil
}

// Accept waits for the gateway to forward the next client.
func (l *forwardListener) Accept() (net.Conn, error) {
	select {
	case <-l.done:
		return nil, net.ErrClosed
	case nc, ok := <-l.incoming:
		if !ok {
			return nil, ncerr.ErrTunnelClosed
		}
		ch, reqs, err := nc.Accept()
		if err != nil {
			return nil, fmt.Errorf("accepting forwarded channel: %w", err)
		}
		go ssh.DiscardRequests(reqs)

		return &channelConn{Channel: ch, laddr: l.Addr(), raddr: originAddr(nc.ExtraData())}, nil
	}
}

// unknownOrigin stands in for a client the gateway did not describe.
var unknownOrigin net.Addr = &net.UnixAddr{Name: "unknown", Net: "forwarded-tcpip"}

// originAddr decodes the client address from a forwarded-tcpip
// payload.
func originAddr(extra []byte) net.Addr {
	var origin forwardedOrigin
	if err := ssh.Unmarshal(extra, &origin); err != nil {
		return unknownOrigin
	}
	ip := net.ParseIP(origin.OriginAddr)
	if ip == nil {
		return unknownOrigin
	}
	return &net.TCPAddr{IP: ip, Port: int(origin.OriginPort)}
}

// Close cancels the forward on the gateway and unblocks Accept.
func (l *forwardListener) Close() error {
	l.once.Do(func() {
		close(l.done)
		l.rejectPending()
		if l.client != nil {
			// The connection may already be gone; nothing to do if so.
			l.client.SendRequest("cancel-tcpip-forward", true, ssh.Marshal(&l.req)) //nolint:errcheck
		}
	})
	return nil
}

// rejectPending refuses channels the gateway queued before Close.
func (l *forwardListener) rejectPending() {
	for {
		select {
		case nc, ok := <-l.incoming:
			if !ok {
				return
			}
			nc.Reject(ssh.Prohibited, "chat listener closed") //nolint:errcheck
		default:
			return
		}
	}
}

// Addr is the gateway-side bind address.
func (l *forwardListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(l.req.Addr), Port: int(l.req.Port)}
}

// channelConn lets an ssh.Channel stand in for a TCP connection.  The
// embedded Channel supplies Read, Write, Close and CloseWrite.
type channelConn struct {
	ssh.Channel
	laddr, raddr net.Addr
}

func (c *channelConn) LocalAddr() net.Addr                { return c.laddr }
func (c *channelConn) RemoteAddr() net.Addr               { return c.raddr }
func (c *channelConn) SetDeadline(_ time.Time) error      { return nil }
func (c *channelConn) SetReadDeadline(_ time.Time) error  { return nil }
func (c *channelConn) SetWriteDeadline(_ time.Time) error { return nil }
