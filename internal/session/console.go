package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Console is the local operator's side of the chat: received messages
// and prompts are written to it and replies are read from it one line
// at a time.  A Console outlives the sessions that use it, so input
// buffered past one session's last line is not lost.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex

	// echo writes a newline after each line read.  A terminal echoes
	// the operator's Enter itself; piped input does not.
	echo bool
}

// NewConsole wraps r and w.  When r is a file that is not a terminal
// the console echoes line endings itself.
func NewConsole(r io.Reader, w io.Writer) *Console {
	c := &Console{in: bufio.NewReader(r), out: w}
	if f, ok := r.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		c.echo = true
	}
	return c
}

// Printf writes formatted text.
func (c *Console) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Println writes s followed by a newline.
func (c *Console) Println(s string) { c.Printf("%s\n", s) }

// Prompt writes s with no trailing newline.
func (c *Console) Prompt(s string) { c.Printf("%s", s) }

// ReadLine blocks for one line of operator input, returned without its
// line ending.  A final unterminated line is returned normally; io.EOF
// is only reported once nothing is left.
//
// Cancelling ctx abandons the read and returns ctx.Err().
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- result{line, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r = <-ch:
	}

	if r.err != nil && (r.err != io.EOF || r.line == "") {
		return "", r.err
	}
	if c.echo {
		c.Printf("\n")
	}
	return strings.TrimRight(r.line, "\r\n"), nil
}
