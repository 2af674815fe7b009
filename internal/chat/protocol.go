// Package chat holds the wire vocabulary shared by both ends of a
// chatserve conversation: the quit sentinel, the end-of-message
// terminator, and the helpers that compose and decode message text.
//
// The format is deliberately informal.  Client text arrives as a
// single read with no framing; server text always ends with "||".
// A terminator typed inside a message is sent as-is and will split
// the message early on the receiving side.
package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// QuitCommand ends a connection when received from the peer and
	// ends the whole process when typed by the local operator.
	QuitCommand = "/quit"

	// EndOfMessage terminates every server-originated message.
	EndOfMessage = "||"

	// HandleSuffix separates a username from the message text.
	HandleSuffix = "> "

	// DefaultHandle is the server's display name.
	DefaultHandle = "hamiltj2" + HandleSuffix

	// MaxUsernameLen is the longest username a client may pick.
	MaxUsernameLen = 10
)

// IsQuit reports whether text is exactly the quit sentinel.
func IsQuit(text string) bool { return text == QuitCommand }

// Decode turns received bytes into text.  Invalid UTF-8 sequences are
// replaced rather than rejected, so a malformed peer never faults the
// session.
func Decode(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// ComposeReply builds the wire text for a server reply.  The quit
// sentinel is sent without the handle so the client can recognise a
// server-initiated close; quit reports whether that happened.
func ComposeReply(handle, text string) (wire string, quit bool) {
	if IsQuit(text) {
		return QuitCommand + EndOfMessage, true
	}
	return handle + text + EndOfMessage, false
}

// ComposeClient builds the wire text for a client message.  Client
// messages carry no terminator, and the quit sentinel is sent bare.
func ComposeClient(handle, text string) (wire string, quit bool) {
	if IsQuit(text) {
		return QuitCommand, true
	}
	return handle + text, false
}

// Handle returns the display prefix for username.
func Handle(username string) string { return username + HandleSuffix }

// ValidateUsername checks the 1-10 character rule.
func ValidateUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxUsernameLen {
		return fmt.Errorf("username must be between 1 and %d characters", MaxUsernameLen)
	}
	return nil
}
