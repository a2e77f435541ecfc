package transport

import (
	"errors"
	"io"
	"time"
)

var ErrClosed = errors.New("transport: buffer is closed")

var _ Sink = new(Buffer)

type deadliner interface {
	SetWriteDeadline(time.Time) error
}

type batch struct {
	n    int
	buff []byte
	err  error
}

// Buffer is a double-buffered Sink. Bytes are collected by the owner in one buffer,
// while the other one is being written by a separate goroutine. The owner never blocks:
// Drain only swaps the buffers when the writer is idle.
type Buffer struct {
	w        io.Writer
	timeout  time.Duration
	maxSpare int
	pending  []byte
	spare    []byte
	inflight int
	flushed  int
	err      error
	closed   bool
	batches  chan []byte
	results  chan batch
	writable chan struct{}
}

// NewBuffer starts the writer goroutine. If w has a SetWriteDeadline method (as net.Conn
// does), every write is limited by timeout, unless it's zero. Buffers that grew beyond
// maxSpare bytes are dropped after being written instead of being reused.
func NewBuffer(w io.Writer, timeout time.Duration, buff []byte, maxSpare int) *Buffer {
	b := &Buffer{
		w:        w,
		timeout:  timeout,
		maxSpare: maxSpare,
		pending:  buff[:0],
		batches:  make(chan []byte, 1),
		results:  make(chan batch, 1),
		writable: make(chan struct{}, 1),
	}

	go b.loop()

	return b
}

func (b *Buffer) Tail() *[]byte {
	return &b.pending
}

func (b *Buffer) Drain() (n int, wouldBlock bool, err error) {
	if b.closed {
		return 0, b.Buffered() > 0, ErrClosed
	}

	b.collect()
	n, b.flushed = b.flushed, 0

	if b.err != nil {
		return n, true, b.err
	}

	if b.inflight == 0 && len(b.pending) > 0 {
		b.inflight = len(b.pending)
		b.batches <- b.pending
		b.pending, b.spare = b.spare, nil
	}

	return n, b.Buffered() > 0, nil
}

func (b *Buffer) Buffered() int {
	b.collect()
	return len(b.pending) + b.inflight
}

func (b *Buffer) Writable() <-chan struct{} {
	return b.writable
}

// Close stops the writer goroutine once the current write, if any, is over. Bytes
// which weren't handed to it yet are discarded.
func (b *Buffer) Close() error {
	if !b.closed {
		b.closed = true
		close(b.batches)
	}

	return nil
}

// collect picks up the result of a finished write, if there's any.
func (b *Buffer) collect() {
	select {
	case res := <-b.results:
		b.inflight = 0
		b.flushed += res.n
		if res.err != nil && b.err == nil {
			b.err = res.err
		}

		if cap(res.buff) <= b.maxSpare {
			b.spare = res.buff[:0]
		}
	default:
	}
}

func (b *Buffer) loop() {
	for buff := range b.batches {
		n, err := b.write(buff)
		b.results <- batch{n: n, buff: buff, err: err}

		select {
		case b.writable <- struct{}{}:
		default:
		}
	}
}

func (b *Buffer) write(p []byte) (int, error) {
	if d, ok := b.w.(deadliner); ok && b.timeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(b.timeout)); err != nil {
			return 0, err
		}
	}

	n, err := b.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}

	return n, err
}
