// Package encoder turns calls of a request handler into a protocol-legal HTTP/1.x request
// written into the connection's output buffer.
//
// The call order is strict: RequestLine, any number of AddHeader/FormatHeader, at most
// one of AddLength and AddChunked, DoneHeaders, WriteBody calls matching the declared
// framing and finally Done. Flush, Buffered and WaitFlush may be used at any point.
// Calls violating the order, as well as body bytes not matching the declared length,
// are bugs and panic with a MisuseError. Invalid or conflicting headers aren't: they are
// reported as headers.Error, so a proxy can drop or sanitize them.
package encoder

import (
	"fmt"

	"github.com/indigo-web/reqwire/http/headers"
	"github.com/indigo-web/reqwire/http/method"
	"github.com/indigo-web/reqwire/http/proto"
	"github.com/indigo-web/reqwire/internal/message"
	"github.com/indigo-web/reqwire/pipeline"
	"github.com/indigo-web/reqwire/transport"
	"github.com/indigo-web/utils/uf"
)

// MisuseError is the value encoder methods panic with when called in a wrong state.
type MisuseError = message.MisuseError

type handleState uint8

const (
	hActive handleState = iota
	hSuspended
	hReleased
)

// Encoder writes a single request. It isn't safe for concurrent use, and must not be
// used anymore after either Done or WaitFlush was called. The latter gives it back once
// completed.
type Encoder struct {
	msg     message.Message
	sink    transport.Sink
	signals *pipeline.Signals
	scratch []byte
	handle  handleState
}

// New returns an encoder writing into the sink. Signals must be the ones of the
// connection the sink belongs to.
func New(sink transport.Sink, signals *pipeline.Signals) *Encoder {
	return &Encoder{
		sink:    sink,
		signals: signals,
	}
}

func (e *Encoder) enter(op string) {
	switch e.handle {
	case hSuspended:
		panic(MisuseError{Op: op, Reason: "encoder is held by a pending flush wait"})
	case hReleased:
		panic(MisuseError{Op: op, Reason: "encoder is already done"})
	}
}

// RequestLine writes the request line and publishes the kind of the request to the
// response reader: HEAD (in any letter case) or a normal one.
//
// Panics if the request line was already written, if the kind of the previous request
// wasn't reset yet, or if the method isn't a token or the path contains whitespace or
// control characters. Nothing is written in that case.
func (e *Encoder) RequestLine(m, path string, protocol proto.Protocol) {
	const op = "request line"
	e.enter(op)

	if prev := e.signals.InFlight.Load(); prev != pipeline.None {
		panic(MisuseError{Op: op, Reason: "in-flight kind of the previous request (" + prev.String() + ") wasn't reset"})
	}

	tail := e.sink.Tail()
	*tail = e.msg.RequestLine(*tail, m, path, protocol)

	kind := pipeline.Normal
	if method.IsHead(m) {
		kind = pipeline.Head
	}

	if !e.signals.InFlight.Publish(kind) {
		panic(MisuseError{Op: op, Reason: "in-flight kind was published concurrently"})
	}
}

// AddHeader writes a header field line immediately.
//
// Content-Length and Transfer-Encoding are handled as AddLength and AddChunked would
// do. A Connection header with the close option raises the close signal of the
// connection.
//
// Panics if called before the request line or after DoneHeaders.
func (e *Encoder) AddHeader(name, value string) error {
	e.enter("add header")

	tail := e.sink.Tail()
	buff, err := e.msg.AddHeader(*tail, name, value)
	if err != nil {
		return err
	}

	*tail = buff
	if headers.Is(name, headers.Connection) && headers.IsClose(value) {
		e.signals.Close.Set()
	}

	return nil
}

// FormatHeader is AddHeader with the value formatted in the manner of fmt.Sprintf.
func (e *Encoder) FormatHeader(name, format string, args ...any) error {
	e.enter("format header")

	e.scratch = fmt.Appendf(e.scratch[:0], format, args...)
	return e.AddHeader(name, uf.B2S(e.scratch))
}

// AddLength writes the Content-Length header. The body written later must be exactly
// n bytes long.
func (e *Encoder) AddLength(n uint64) error {
	e.enter("add length")

	tail := e.sink.Tail()
	buff, err := e.msg.AddLength(*tail, n)
	if err == nil {
		*tail = buff
	}

	return err
}

// AddChunked writes the Transfer-Encoding: chunked header. The body written later is
// framed into chunks. This is the only transfer coding supported.
func (e *Encoder) AddChunked() error {
	e.enter("add chunked")

	tail := e.sink.Tail()
	buff, err := e.msg.AddChunked(*tail)
	if err == nil {
		*tail = buff
	}

	return err
}

// DoneHeaders closes the header block. If neither AddLength nor AddChunked was called,
// the request has no body.
func (e *Encoder) DoneHeaders() {
	e.enter("done headers")

	tail := e.sink.Tail()
	buff, body := e.msg.DoneHeaders(*tail)
	if !body {
		panic(MisuseError{Op: "done headers", Reason: "requests must always permit a body"})
	}

	*tail = buff
}

// WriteBody writes a piece of the body, framed as a chunk if chunked coding is used.
//
// Panics if the data exceeds the declared Content-Length or if the request has no body.
func (e *Encoder) WriteBody(data []byte) {
	e.enter("write body")

	tail := e.sink.Tail()
	*tail = e.msg.WriteBody(*tail, data)
}

// Write implements io.Writer by forwarding to WriteBody. It never fails: the data only
// goes into the buffer, and any misuse panics just as WriteBody does.
func (e *Encoder) Write(p []byte) (int, error) {
	e.WriteBody(p)
	return len(p), nil
}

// Done completes the request and returns the terminal handle. The encoder must not be
// used anymore.
//
// Panics if a fixed-length body wasn't written completely.
func (e *Encoder) Done() *Done {
	e.enter("done")

	tail := e.sink.Tail()
	*tail = e.msg.Done(*tail)
	e.handle = hReleased

	return &Done{
		sink:     e.sink,
		bodySize: e.msg.Written(),
	}
}

// Flush tries to write the buffered data without blocking and returns how many bytes
// are still left.
func (e *Encoder) Flush() (pending int, err error) {
	e.enter("flush")

	_, _, err = e.sink.Drain()
	return e.sink.Buffered(), err
}

// Buffered returns the number of bytes not yet written to the socket. These may include
// bytes of previous requests, if pipelined.
func (e *Encoder) Buffered() int {
	e.enter("buffered")

	return e.sink.Buffered()
}

// WaitFlush hands the encoder over to a WaitFlush, which gives it back once fewer than
// watermark bytes are left in the buffer. A watermark below 1 waits for the buffer to be
// drained completely.
func (e *Encoder) WaitFlush(watermark int) *WaitFlush {
	e.enter("wait flush")

	e.handle = hSuspended

	return &WaitFlush{
		enc:       e,
		watermark: max(watermark, 1),
		writable:  e.sink.Writable(),
	}
}

// Done is returned when the request is completely written. It has no write operations,
// so nothing can be appended to the request anymore.
type Done struct {
	sink     transport.Sink
	bodySize uint64
}

// Of tells whether the request was written into the sink.
func (d *Done) Of(sink transport.Sink) bool {
	return d.sink == sink
}

// BodySize returns the number of body bytes written, framing excluded.
func (d *Done) BodySize() uint64 {
	return d.bodySize
}
