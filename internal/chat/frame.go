package chat

import (
	"bytes"
	"io"
)

// FrameReader splits a server stream on EndOfMessage.  Reads are
// accumulated until a terminator shows up, so a message spread over
// several TCP segments is reassembled.  Bytes after the terminator are
// kept for the next call.
type FrameReader struct {
	r       io.Reader
	buf     []byte
	pending []byte
}

// NewFrameReader reads from r using chunks of size bufSize.
func NewFrameReader(r io.Reader, bufSize int) *FrameReader {
	if bufSize <= 0 {
		bufSize = 1024
	}
	return &FrameReader{r: r, buf: make([]byte, bufSize)}
}

// Next returns the next message with its terminator stripped.
//
// When the stream ends before a terminator arrives, Next returns
// io.EOF if nothing was buffered, or the partial text together with
// io.ErrUnexpectedEOF.
func (f *FrameReader) Next() (string, error) {
	term := []byte(EndOfMessage)
	for {
		if i := bytes.Index(f.pending, term); i >= 0 {
			msg := Decode(f.pending[:i])
			f.pending = f.pending[i+len(term):]
			return msg, nil
		}

		n, err := f.r.Read(f.buf)
		if n > 0 {
			f.pending = append(f.pending, f.buf[:n]...)
			continue
		}
		if err == nil {
			continue
		}
		if err == io.EOF && len(f.pending) > 0 {
			msg := Decode(f.pending)
			f.pending = nil
			return msg, io.ErrUnexpectedEOF
		}
		return "", err
	}
}
