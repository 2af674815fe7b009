package capability

import (
	"context"
	"fmt"
	"io"

	"chatserve/internal/chat"
	"chatserve/internal/session"
)

// Initiator is the connecting side of a chat.  It introduces itself,
// then alternates reading a framed server message and sending the
// operator's reply.
type Initiator struct {
	Username string // prompted for when empty
	Greeting string // text after the handle in the first message
	Server   string // shown when the server shuts down
}

// Handle always returns Terminate: a client has nothing to go back to.
func (in *Initiator) Handle(ctx context.Context, sess *session.Session) (session.Outcome, error) {
	name, err := in.username(ctx, sess.Console)
	if err != nil {
		return session.Terminate, err
	}
	handle := chat.Handle(name)

	if err := sess.Send(handle + in.Greeting); err != nil {
		return session.Terminate, err
	}

	frames := chat.NewFrameReader(sess.Conn, sess.BufferSize())
	for {
		msg, err := frames.Next()
		if err != nil {
			if msg != "" {
				sess.Console.Println(msg)
			}
			sess.Logger.Verbose("server stream ended: %v", err)
			sess.Console.Printf("Connection to %s closed.\n", in.Server)
			return session.Terminate, nil
		}
		sess.Metrics.MessageReceived(len(msg) + len(chat.EndOfMessage))

		if chat.IsQuit(msg) {
			sess.Console.Printf("%s is shutting down.\n", in.Server)
			return session.Terminate, nil
		}

		sess.Console.Println(msg)
		sess.Console.Prompt(handle)

		line, err := sess.Console.ReadLine(ctx)
		switch {
		case err == io.EOF:
			line = chat.QuitCommand
		case err != nil:
			return session.Terminate, err
		}

		wire, quit := chat.ComposeClient(handle, line)
		if err := sess.Send(wire); err != nil {
			return session.Terminate, err
		}
		if quit {
			return session.Terminate, nil
		}
	}
}

// username returns the configured name or asks until a valid one is
// typed.
func (in *Initiator) username(ctx context.Context, con *session.Console) (string, error) {
	if in.Username != "" {
		return in.Username, nil
	}
	for {
		con.Prompt("Please enter a username: ")
		name, err := con.ReadLine(ctx)
		if err != nil {
			return "", fmt.Errorf("reading username: %w", err)
		}
		if err := chat.ValidateUsername(name); err != nil {
			con.Printf("Your %s.\n", err)
			continue
		}
		return name, nil
	}
}
