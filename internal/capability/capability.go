// Package capability defines what happens over an established chat
// connection.  Each Capability is one turn-taking policy: the server
// side waits for the peer to speak first, the client side speaks
// first.  Capabilities operate on a Session rather than a raw
// net.Conn, which keeps them testable and decoupled from transport
// details.
package capability

import (
	"context"

	"chatserve/internal/session"
)

// Capability runs a conversation over one session.
type Capability interface {
	// Handle blocks until the conversation ends and reports whether
	// the caller should keep serving.  Peer disconnects are not
	// errors; a non-nil error means the session could not continue
	// for a local reason (for example ctx was cancelled).
	Handle(ctx context.Context, sess *session.Session) (session.Outcome, error)
}
