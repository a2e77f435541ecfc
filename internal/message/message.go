// Package message implements the framing rules of a single HTTP/1.x request.
//
// Every method appends the bytes it serializes to the passed buffer and returns the
// extended buffer, much like the strconv.Append* family. When a recoverable error is
// returned, the buffer is returned untouched. Calls made in a state that doesn't permit
// them panic with a MisuseError.
package message

import (
	"fmt"
	"strconv"

	"github.com/indigo-web/reqwire/http/headers"
	"github.com/indigo-web/reqwire/http/proto"
)

const crlf = "\r\n"

var chunkedTrailer = []byte("0\r\n\r\n")

// MisuseError is the panic value for calls violating the operation order or the declared
// body length. It always indicates a bug in the caller.
type MisuseError struct {
	Op     string
	Reason string
}

func (m MisuseError) Error() string {
	return "BUG: " + m.Op + ": " + m.Reason
}

func misuse(op, format string, args ...any) {
	panic(MisuseError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// Message tracks one request being written. The zero value is ready to use.
type Message struct {
	state     messageState
	framing   framing
	protocol  proto.Protocol
	remaining uint64
	written   uint64
}

func (m *Message) expect(op string, state messageState) {
	if m.state != state {
		misuse(op, "called in a wrong state (%s, must be %s)", m.state, state)
	}
}

// RequestLine serializes `METHOD SP PATH SP VERSION CRLF`. The method must be a token and
// the path must not contain whitespace or control characters, otherwise the call panics:
// letting them through would allow injecting arbitrary request lines.
func (m *Message) RequestLine(buf []byte, method, path string, protocol proto.Protocol) []byte {
	const op = "request line"
	m.expect(op, eRequestLine)

	if !headers.IsToken(method) {
		misuse(op, "method %q is not a token", method)
	}

	if !validPath(path) {
		misuse(op, "path %q must be non-empty and contain no whitespace or control characters", path)
	}

	if protocol.String() == "" {
		misuse(op, "unsupported protocol")
	}

	buf = append(buf, method...)
	buf = append(buf, ' ')
	buf = append(buf, path...)
	buf = append(buf, ' ')
	buf = append(buf, protocol.String()...)
	buf = append(buf, crlf...)

	m.protocol = protocol
	m.state = eHeaders

	return buf
}

// AddHeader serializes `name: value CRLF`. Content-Length and Transfer-Encoding are
// not written verbatim: they are routed to AddLength and AddChunked respectively.
func (m *Message) AddHeader(buf []byte, name, value string) ([]byte, error) {
	m.expect("add header", eHeaders)

	if !headers.IsToken(name) {
		return buf, headers.ErrInvalidName
	}

	if !headers.ValidValue(value) {
		return buf, headers.ErrInvalidValue
	}

	switch {
	case headers.Is(name, headers.ContentLength):
		length, ok := parseUint(value)
		if !ok {
			return buf, headers.ErrInvalidValue
		}

		return m.AddLength(buf, length)
	case headers.Is(name, headers.TransferEncoding):
		if !headers.IsChunked(value) {
			return buf, headers.ErrUnsupportedTransferEncoding
		}

		return m.AddChunked(buf)
	}

	buf = append(buf, name...)
	buf = append(buf, ':', ' ')
	buf = append(buf, value...)

	return append(buf, crlf...), nil
}

// AddLength declares the body to be exactly n bytes long.
func (m *Message) AddLength(buf []byte, n uint64) ([]byte, error) {
	m.expect("add length", eHeaders)

	if m.framing != fUnset {
		return buf, headers.ErrDuplicateBodyLength
	}

	buf = append(buf, headers.ContentLength...)
	buf = append(buf, ':', ' ')
	buf = strconv.AppendUint(buf, n, 10)
	buf = append(buf, crlf...)

	m.framing = fFixed
	m.remaining = n

	return buf, nil
}

// AddChunked declares the body to be transferred in chunked coding.
func (m *Message) AddChunked(buf []byte) ([]byte, error) {
	m.expect("add chunked", eHeaders)

	if m.framing != fUnset {
		return buf, headers.ErrDuplicateBodyLength
	}

	if m.protocol == proto.HTTP10 {
		return buf, headers.ErrChunkedHTTP10
	}

	buf = append(buf, headers.TransferEncoding...)
	buf = append(buf, ": chunked"...)
	buf = append(buf, crlf...)

	m.framing = fChunked

	return buf, nil
}

// DoneHeaders terminates the header block. The returned flag tells whether the message
// may carry a body, which is always the case for requests.
func (m *Message) DoneHeaders(buf []byte) ([]byte, bool) {
	m.expect("done headers", eHeaders)

	if m.framing == fUnset {
		m.framing = fNone
	}

	m.state = eBody

	return append(buf, crlf...), true
}

// WriteBody appends a piece of the body, wrapping it into a chunk if needed. With a fixed
// length, exceeding it panics before any byte is appended. Writing anything into a message
// without framing panics, too.
func (m *Message) WriteBody(buf []byte, data []byte) []byte {
	const op = "write body"
	m.expect(op, eBody)

	switch m.framing {
	case fFixed:
		if uint64(len(data)) > m.remaining {
			misuse(op, "%d bytes exceed the declared length (%d bytes left)", len(data), m.remaining)
		}

		m.remaining -= uint64(len(data))
		buf = append(buf, data...)
	case fChunked:
		if len(data) == 0 {
			// an empty chunk would terminate the body
			return buf
		}

		buf = strconv.AppendUint(buf, uint64(len(data)), 16)
		buf = append(buf, crlf...)
		buf = append(buf, data...)
		buf = append(buf, crlf...)
	default:
		misuse(op, "neither Content-Length nor chunked transfer encoding were set")
	}

	m.written += uint64(len(data))

	return buf
}

// Done completes the message. A fixed-length body must be fully written by now, and a
// chunked one gets its last chunk.
func (m *Message) Done(buf []byte) []byte {
	const op = "done"
	m.expect(op, eBody)

	switch m.framing {
	case fFixed:
		if m.remaining != 0 {
			misuse(op, "body is %d bytes shorter than declared", m.remaining)
		}
	case fChunked:
		buf = append(buf, chunkedTrailer...)
	}

	m.state = eDone

	return buf
}

// Written returns the number of body bytes accepted so far, framing excluded.
func (m *Message) Written() uint64 {
	return m.written
}

// IsDone reports whether the message is completed.
func (m *Message) IsDone() bool {
	return m.state == eDone
}

// Reset prepares the message for the next request.
func (m *Message) Reset() {
	*m = Message{}
}

func validPath(path string) bool {
	if len(path) == 0 {
		return false
	}

	for i := 0; i < len(path); i++ {
		if c := path[i]; c <= ' ' || c == 0x7f {
			return false
		}
	}

	return true
}
