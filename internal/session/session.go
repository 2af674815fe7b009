// Package session represents a single chat connection, binding the
// network connection to the operator console and the process-wide
// logger and metrics.
//
// Sessions decouple turn-taking policies from concrete I/O sources: a
// capability doesn't need to know whether the operator is a terminal
// or a test buffer, it just uses the session's Console.
package session

import (
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"

	"chatserve/internal/chat"
	ncerr "chatserve/internal/errors"
	"chatserve/internal/metrics"
	"chatserve/util"
)

// Outcome is what a finished session asks of the accept loop.
type Outcome int

const (
	// Continue returns to listening for the next client.
	Continue Outcome = iota
	// Terminate closes the listener and ends the process.
	Terminate
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Terminate:
		return "terminate"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Session is one accepted (or dialled) connection.  It owns Conn until
// Close is called.
type Session struct {
	ID      uuid.UUID
	Conn    net.Conn
	Console *Console
	Logger  *util.Logger
	Metrics *metrics.Collector // may be nil

	buffers *util.BufPool
}

// New binds conn to the operator console.  Receive buffers come from
// buffers; a nil pool selects util.DefaultBufSize.
func New(conn net.Conn, console *Console, logger *util.Logger, m *metrics.Collector, buffers *util.BufPool) *Session {
	if buffers == nil {
		buffers = util.NewBufPool(util.DefaultBufSize)
	}
	id := uuid.New()
	return &Session{
		ID:      id,
		Conn:    conn,
		Console: console,
		Logger:  logger.WithPrefix("session " + id.String()[:8]),
		Metrics: m,
		buffers: buffers,
	}
}

// Peer returns the remote address as "host:port".
func (s *Session) Peer() string { return util.HostPort(s.Conn.RemoteAddr()) }

// BufferSize is the most one Receive can return.
func (s *Session) BufferSize() int { return s.buffers.Size() }

// Receive performs one read and returns it as text.  There is no
// framing: whatever a single read returns is the message.
//
// A zero-length read or EOF means the peer closed the stream without
// sending the quit sentinel and is reported as ErrPeerClosed.
func (s *Session) Receive() (string, error) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	n, err := s.Conn.Read(*buf)
	if n > 0 {
		s.Metrics.MessageReceived(n)
		text := chat.Decode((*buf)[:n])
		s.Logger.Debug("received %d bytes", n)
		return text, nil
	}
	if err == nil || err == io.EOF {
		return "", ncerr.ErrPeerClosed
	}
	return "", ncerr.Wrap("read", s.Peer(), err)
}

// Send writes wire text in full.
func (s *Session) Send(wire string) error {
	n, err := io.WriteString(s.Conn, wire)
	if err != nil {
		return ncerr.Wrap("write", s.Peer(), err)
	}
	s.Metrics.MessageSent(n)
	s.Logger.Debug("sent %d bytes", n)
	return nil
}

// Close shuts down both directions and releases the connection.
func (s *Session) Close() error {
	if rc, ok := s.Conn.(interface{ CloseRead() error }); ok {
		rc.CloseRead() //nolint:errcheck
	}
	if wc, ok := s.Conn.(interface{ CloseWrite() error }); ok {
		wc.CloseWrite() //nolint:errcheck
	}
	return s.Conn.Close()
}
