package capability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"chatserve/internal/chat"
	"chatserve/internal/metrics"
	"chatserve/internal/session"
	"chatserve/util"
)

// scriptConn replays reads one chunk per Read call and records writes.
// Once the script is exhausted Read reports io.EOF.
type scriptConn struct {
	reads    []string
	writes   []string
	writeErr error
	closed   bool
}

func (c *scriptConn) Read(p []byte) (int, error) {
	if len(c.reads) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.reads[0])
	c.reads = c.reads[1:]
	return n, nil
}

func (c *scriptConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, string(p))
	return len(p), nil
}

func (c *scriptConn) Close() error                       { c.closed = true; return nil }
func (c *scriptConn) LocalAddr() net.Addr                { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000} }
func (c *scriptConn) RemoteAddr() net.Addr               { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5555} }
func (c *scriptConn) SetDeadline(_ time.Time) error      { return nil }
func (c *scriptConn) SetReadDeadline(_ time.Time) error  { return nil }
func (c *scriptConn) SetWriteDeadline(_ time.Time) error { return nil }

func newSession(conn net.Conn, operator string, out io.Writer, m *metrics.Collector) *session.Session {
	logger := util.NewLogger(0)
	logger.SetOutput(io.Discard)
	console := session.NewConsole(strings.NewReader(operator), out)
	return session.New(conn, console, logger, m, util.NewBufPool(64))
}

// ── Responder ────────────────────────────────────────────────────────

func TestResponder_Turns(t *testing.T) {
	tests := []struct {
		name      string
		reads     []string
		operator  string
		writeErr  error
		want      session.Outcome
		wantWires []string
		wantOut   string
	}{
		{
			name:    "peer quits at once",
			reads:   []string{"/quit"},
			want:    session.Continue,
			wantOut: "Client 127.0.0.1:5555 disconnected.\n",
		},
		{
			name:    "peer closes without quit",
			reads:   nil,
			want:    session.Continue,
			wantOut: "Client 127.0.0.1:5555 disconnected.\n",
		},
		{
			name:      "reply then peer quits",
			reads:     []string{"hello", "/quit"},
			operator:  "hi there\n",
			want:      session.Continue,
			wantWires: []string{"hamiltj2> hi there||"},
			wantOut:   "hello\nhamiltj2> Client 127.0.0.1:5555 disconnected.\n",
		},
		{
			name:      "operator quits",
			reads:     []string{"hello"},
			operator:  "/quit\n",
			want:      session.Terminate,
			wantWires: []string{"/quit||"},
			wantOut:   "hello\nhamiltj2> ",
		},
		{
			name:      "operator input closed",
			reads:     []string{"hello"},
			want:      session.Terminate,
			wantWires: []string{"/quit||"},
		},
		{
			name:      "two turns",
			reads:     []string{"one", "two"},
			operator:  "a\nb\n",
			want:      session.Continue,
			wantWires: []string{"hamiltj2> a||", "hamiltj2> b||"},
		},
		{
			name:     "send failure",
			reads:    []string{"hello"},
			operator: "reply\n",
			writeErr: syscall.EPIPE,
			want:     session.Continue,
			wantOut:  "hello\nhamiltj2> Client 127.0.0.1:5555 disconnected.\n",
		},
		{
			name:     "send failure on quit",
			reads:    []string{"hello"},
			operator: "/quit\n",
			writeErr: syscall.ECONNRESET,
			want:     session.Terminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &scriptConn{reads: tt.reads, writeErr: tt.writeErr}
			var out bytes.Buffer
			sess := newSession(conn, tt.operator, &out, metrics.New())

			r := &Responder{Name: chat.DefaultHandle}
			got, err := r.Handle(context.Background(), sess)
			if err != nil {
				t.Fatalf("Handle() err = %v", err)
			}
			if got != tt.want {
				t.Errorf("Handle() = %s, want %s", got, tt.want)
			}
			if strings.Join(conn.writes, "|") != strings.Join(tt.wantWires, "|") {
				t.Errorf("wire = %q, want %q", conn.writes, tt.wantWires)
			}
			if tt.wantOut != "" && out.String() != tt.wantOut {
				t.Errorf("console = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestResponder_Metrics(t *testing.T) {
	m := metrics.New()
	conn := &scriptConn{reads: []string{"hello", "/quit"}}
	sess := newSession(conn, "hi\n", io.Discard, m)

	if _, err := (&Responder{Name: "x> "}).Handle(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	snap := m.Snapshot()
	if snap.PeerQuits != 1 || snap.PeerDrops != 0 {
		t.Errorf("quits=%d drops=%d", snap.PeerQuits, snap.PeerDrops)
	}
	if snap.MessagesIn != 2 || snap.MessagesOut != 1 {
		t.Errorf("in=%d out=%d", snap.MessagesIn, snap.MessagesOut)
	}
}

func TestResponder_DisconnectKinds(t *testing.T) {
	tests := []struct {
		name       string
		reads      []string
		writeErr   error
		wantQuits  int64
		wantDrops  int64
		wantErrors int64
	}{
		{"peer quit", []string{"/quit"}, nil, 1, 0, 0},
		{"peer closed", nil, nil, 0, 1, 0},
		{"peer reset on send", []string{"hi"}, syscall.EPIPE, 0, 1, 0},
		{"unexpected send failure", []string{"hi"}, errors.New("disk on fire"), 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			var out bytes.Buffer
			conn := &scriptConn{reads: tt.reads, writeErr: tt.writeErr}
			sess := newSession(conn, "reply\n", &out, m)

			got, err := (&Responder{Name: "x> "}).Handle(context.Background(), sess)
			if err != nil || got != session.Continue {
				t.Fatalf("Handle() = (%s, %v), want continue", got, err)
			}

			snap := m.Snapshot()
			if snap.PeerQuits != tt.wantQuits || snap.PeerDrops != tt.wantDrops || snap.ErrorsTotal != tt.wantErrors {
				t.Errorf("quits=%d drops=%d errors=%d, want %d/%d/%d",
					snap.PeerQuits, snap.PeerDrops, snap.ErrorsTotal,
					tt.wantQuits, tt.wantDrops, tt.wantErrors)
			}
			if !strings.HasSuffix(out.String(), "Client 127.0.0.1:5555 disconnected.\n") {
				t.Errorf("console = %q", out.String())
			}
		})
	}
}

func TestResponder_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	logger := util.NewLogger(0)
	logger.SetOutput(io.Discard)
	conn := &scriptConn{reads: []string{"hello"}}
	sess := session.New(conn, session.NewConsole(r, io.Discard), logger, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Responder{Name: "x> "}).Handle(ctx, sess)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// ── Initiator ────────────────────────────────────────────────────────

func TestInitiator_PromptsForUsername(t *testing.T) {
	conn := &scriptConn{reads: []string{"/quit||"}}
	var out bytes.Buffer
	sess := newSession(conn, "\nelevenchars\nann\n", &out, nil)

	in := &Initiator{Greeting: "4000", Server: "srv:4000"}
	got, err := in.Handle(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if got != session.Terminate {
		t.Errorf("Handle() = %s", got)
	}
	if len(conn.writes) != 1 || conn.writes[0] != "ann> 4000" {
		t.Errorf("wire = %q", conn.writes)
	}
	console := out.String()
	if strings.Count(console, "Please enter a username: ") != 3 {
		t.Errorf("console = %q", console)
	}
	if strings.Count(console, "Your username must be between 1 and 10 characters.") != 2 {
		t.Errorf("console = %q", console)
	}
	if !strings.HasSuffix(console, "srv:4000 is shutting down.\n") {
		t.Errorf("console = %q", console)
	}
}

func TestInitiator_Conversation(t *testing.T) {
	conn := &scriptConn{reads: []string{"hamiltj2> he", "llo||", "hamiltj2> bye||"}}
	var out bytes.Buffer
	sess := newSession(conn, "hey\n/quit\n", &out, nil)

	in := &Initiator{Username: "ann", Greeting: "4000", Server: "srv:4000"}
	if _, err := in.Handle(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	want := []string{"ann> 4000", "ann> hey", "/quit"}
	if strings.Join(conn.writes, "|") != strings.Join(want, "|") {
		t.Errorf("wire = %q, want %q", conn.writes, want)
	}
	if !strings.HasPrefix(out.String(), "hamiltj2> hello\nann> hamiltj2> bye\nann> ") {
		t.Errorf("console = %q", out.String())
	}
}

func TestInitiator_ServerGoesAway(t *testing.T) {
	conn := &scriptConn{reads: []string{"hamiltj2> half"}}
	var out bytes.Buffer
	sess := newSession(conn, "", &out, nil)

	in := &Initiator{Username: "ann", Server: "srv:4000"}
	got, err := in.Handle(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if got != session.Terminate {
		t.Errorf("Handle() = %s", got)
	}
	want := "hamiltj2> half\nConnection to srv:4000 closed.\n"
	if out.String() != want {
		t.Errorf("console = %q, want %q", out.String(), want)
	}
}

func TestInitiator_GreetingFails(t *testing.T) {
	conn := &scriptConn{writeErr: syscall.EPIPE}
	sess := newSession(conn, "", io.Discard, nil)

	in := &Initiator{Username: "ann"}
	if _, err := in.Handle(context.Background(), sess); err == nil {
		t.Fatal("expected send error")
	}
}
