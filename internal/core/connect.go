package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"chatserve/internal/capability"
	"chatserve/internal/metrics"
	"chatserve/internal/session"
	"chatserve/internal/transport"
	"chatserve/util"
)

// ConnectMode dials a chat server and runs the client side of the
// conversation.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	Address    string
	BufferSize int
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *ConnectMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials the server and chats until either side quits.  The
// transport is closed when Run returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	m.Logger.Verbose("connecting to %s", m.Address)

	conn, err := m.Dialer.Dial(ctx, "tcp", m.Address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}

	console := session.NewConsole(m.stdin(), m.stdout())
	sess := session.New(conn, console, m.Logger, m.Metrics, util.NewBufPool(m.BufferSize))
	defer sess.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	m.Metrics.SessionOpened()
	defer m.Metrics.SessionClosed()

	sess.Logger.Verbose("connected to %s", sess.Peer())

	if _, err := m.Capability.Handle(ctx, sess); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
