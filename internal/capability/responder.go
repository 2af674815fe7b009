package capability

import (
	"context"
	"io"

	"chatserve/internal/chat"
	ncerr "chatserve/internal/errors"
	"chatserve/internal/session"
)

// Responder is the listening side of a chat.  Each turn it receives a
// message, shows it to the operator, and sends the operator's reply
// prefixed with Name.
type Responder struct {
	Name string // handle, e.g. "hamiltj2> "
}

// Handle runs turns until the peer quits or disappears (Continue) or
// the operator sends the quit sentinel (Terminate).
func (r *Responder) Handle(ctx context.Context, sess *session.Session) (session.Outcome, error) {
	for {
		text, err := sess.Receive()
		if err == nil && chat.IsQuit(text) {
			err = ncerr.ErrPeerQuit
		}
		if err != nil {
			r.disconnected(sess, err)
			return session.Continue, nil
		}

		sess.Console.Println(text)
		sess.Console.Prompt(r.Name)

		line, err := sess.Console.ReadLine(ctx)
		switch {
		case err == io.EOF:
			// Nobody is left to type a reply.
			sess.Logger.Warn("operator input closed, sending %s", chat.QuitCommand)
			line = chat.QuitCommand
		case err != nil:
			return session.Continue, err
		}

		wire, quit := chat.ComposeReply(r.Name, line)
		if err := sess.Send(wire); err != nil {
			r.disconnected(sess, err)
			if quit {
				return session.Terminate, nil
			}
			return session.Continue, nil
		}

		if quit {
			sess.Logger.Verbose("operator sent %s", chat.QuitCommand)
			return session.Terminate, nil
		}
	}
}

// disconnected reports the end of a peer's session.  Only
// ErrPeerQuit counts as a clean quit; anything else is a drop.
func (r *Responder) disconnected(sess *session.Session, err error) {
	switch {
	case ncerr.Is(err, ncerr.ErrPeerQuit):
		sess.Metrics.PeerQuit()
		sess.Logger.Verbose("peer sent %s", chat.QuitCommand)
	case ncerr.Is(err, ncerr.ErrPeerClosed):
		sess.Metrics.PeerDropped()
		sess.Logger.Verbose("peer closed the connection without %s", chat.QuitCommand)
	case ncerr.IsDisconnect(err):
		sess.Metrics.PeerDropped()
		sess.Logger.Verbose("peer went away: %v", err)
	default:
		sess.Metrics.PeerDropped()
		sess.Metrics.RecordError(err.Error())
		sess.Logger.Warn("dropping session: %v", err)
	}
	sess.Console.Printf("Client %s disconnected.\n", sess.Peer())
}
