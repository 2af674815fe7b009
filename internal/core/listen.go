package core

import (
	"context"
	"io"
	"net"
	"os"

	"chatserve/internal/capability"
	ncerr "chatserve/internal/errors"
	"chatserve/internal/metrics"
	"chatserve/internal/session"
	"chatserve/internal/transport"
	"chatserve/util"
)

// ListenMode is the accept loop.  It serves one connection at a time:
// a client that connects mid-chat waits until the current session
// ends.  A session ending with Terminate closes the listener and makes
// Run return nil.
type ListenMode struct {
	Listener   transport.Listener
	Capability capability.Capability
	BufferSize int
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *ListenMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ListenMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run binds, then accepts and serves clients until the operator sends
// the quit sentinel or ctx is cancelled.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := m.Listener.Listen(ctx)
	if err != nil {
		return err
	}
	defer m.Listener.Close()
	defer ln.Close()

	// Unblock Accept when the context expires.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	console := session.NewConsole(m.stdin(), m.stdout())
	console.Printf("Now listening for incoming connections on %s:%d.\n",
		util.LocalFQDN(ctx), listenPort(ln.Addr()))
	m.Logger.Verbose("listening on %s", ln.Addr())

	buffers := util.NewBufPool(m.BufferSize)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return ncerr.Wrap("accept", ln.Addr().String(), err)
		}

		outcome, err := m.serveConn(ctx, conn, console, buffers)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			m.Metrics.RecordError(err.Error())
			m.Logger.Warn("session ended with error: %v", err)
		}
		if outcome == session.Terminate {
			m.Logger.Verbose("%v, closing %s", ncerr.ErrShutdownRequested, ln.Addr())
			return nil
		}
	}
}

func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn, console *session.Console, buffers *util.BufPool) (session.Outcome, error) {
	sess := session.New(conn, console, m.Logger, m.Metrics, buffers)
	defer sess.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	m.Metrics.SessionOpened()
	defer m.Metrics.SessionClosed()

	console.Printf("Connected to %s.\n", sess.Peer())
	sess.Logger.Verbose("accepted %s", sess.Peer())

	outcome, err := m.Capability.Handle(ctx, sess)
	sess.Logger.Verbose("finished: %s", outcome)
	return outcome, err
}

func listenPort(addr net.Addr) int {
	if ta, ok := addr.(*net.TCPAddr); ok {
		return ta.Port
	}
	return 0
}
